package vss

import "github.com/agrigoriev/vss2git/internal/bytestream"

func newTestReader(data []byte) *bytestream.Reader {
	return bytestream.NewReader(data, nil)
}
