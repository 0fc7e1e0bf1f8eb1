package vss

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/sys/unix"
	"golang.org/x/text/encoding/charmap"

	"github.com/agrigoriev/vss2git/internal/bytestream"
)

// RootPhysicalName is the fixed physical name VSS assigns the top-level
// project every database is rooted at.
var RootPhysicalName = PhysicalName{'A', 'A', 'A', 'A', 'A', 'A', 'A', 'A'}

// iniConfig is a parsed srcsafe.ini: a flat case-insensitive key/value map.
// Section headers are accepted but ignored — real srcsafe.ini files don't
// nest settings under them.
type iniConfig map[string]string

func parseSrcSafeIni(path string) (iniConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	cfg := iniConfig{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "[") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		cfg[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(val)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c iniConfig) get(key, def string) string {
	if v, ok := c[strings.ToLower(key)]; ok && v != "" {
		return v
	}
	return def
}

var codepageCharmaps = map[int]*charmap.Charmap{
	437:  charmap.CodePage437,
	850:  charmap.CodePage850,
	1250: charmap.Windows1250,
	1251: charmap.Windows1251,
	1252: charmap.Windows1252,
	1253: charmap.Windows1253,
	1254: charmap.Windows1254,
	1257: charmap.Windows1257,
}

// decoderForCodepage returns a bytestream.Decoder that transcodes through
// the named single-byte Windows/DOS codepage. A nil return means "use the
// reader's UTF-8 default" — either codepage 0/unset, or one this build
// doesn't carry a table for.
func decoderForCodepage(cp int) bytestream.Decoder {
	cm, ok := codepageCharmaps[cp]
	if !ok {
		return nil
	}
	dec := cm.NewDecoder()
	return func(b []byte) string {
		out, err := dec.Bytes(b)
		if err != nil {
			return string(b)
		}
		return string(out)
	}
}

// Database is an opened VSS root: its srcsafe.ini settings, resolved data
// directory, configured name decoder, and the shared names.dat overflow
// file every item file's vssName fields may need.
type Database struct {
	RootPath string
	DataPath string
	Config   iniConfig
	Decoder  bytestream.Decoder
	Codepage *charmap.Charmap
	NameFile *NameFile

	lockFile *os.File
}

// OpenDatabase opens the VSS database rooted at rootPath, reading
// srcsafe.ini to resolve the data directory and codepage. codepageOverride,
// when nonzero, takes precedence over srcsafe.ini's own Codepage setting
// (the CLI's --encoding flag uses this to cope with an ini that lies).
func OpenDatabase(rootPath string, codepageOverride int) (*Database, error) {
	iniPath := filepath.Join(rootPath, "srcsafe.ini")
	cfg, err := parseSrcSafeIni(iniPath)
	if err != nil {
		return nil, err
	}

	dataPath := cfg.get("Data_Path", "data")
	if !filepath.IsAbs(dataPath) {
		dataPath = filepath.Join(rootPath, dataPath)
	}

	cp := codepageOverride
	if cp == 0 {
		if v := cfg.get("Codepage", ""); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				cp = n
			}
		}
	}
	decoder := decoderForCodepage(cp)
	if decoder == nil {
		decoder = func(b []byte) string { return string(b) }
	}
	codepage := codepageCharmaps[cp] // nil when cp is 0/unset or unsupported

	nf, err := OpenNameFile(filepath.Join(dataPath, "names.dat"), decoder)
	if err != nil {
		if !errors.Is(err, ErrFileNotFound) {
			return nil, err
		}
		nf = nil
	}

	return &Database{
		RootPath: rootPath,
		DataPath: dataPath,
		Config:   cfg,
		Decoder:  decoder,
		Codepage: codepage,
		NameFile: nf,
	}, nil
}

// IndexKey computes name's directory-sort index key by lowercasing each
// character in the database's own single-byte codepage rather than in
// Unicode: name is re-encoded to codepage bytes, each byte is decoded back
// to a rune, lowercased, and re-encoded, so two names that collide under
// the codepage's byte-wise lowercase compare equal the same way VSS itself
// would sort them. A plain Unicode strings.ToLower here can disagree with
// that codepage-local case fold and desync directory-state reconstruction.
// Falls back to a Unicode lowercase if the database has no configured
// codepage, or if name contains characters the codepage can't represent.
func (db *Database) IndexKey(name string) string {
	if db.Codepage == nil {
		return strings.ToLower(name)
	}
	encoded, err := db.Codepage.NewEncoder().String(name)
	if err != nil {
		return strings.ToLower(name)
	}
	out := make([]byte, len(encoded))
	for i := 0; i < len(encoded); i++ {
		r := db.Codepage.DecodeByte(encoded[i])
		lower := unicode.ToLower(r)
		if b, ok := db.Codepage.EncodeRune(lower); ok {
			out[i] = b
		} else {
			out[i] = encoded[i]
		}
	}
	decoded, err := db.Codepage.NewDecoder().Bytes(out)
	if err != nil {
		return strings.ToLower(name)
	}
	return string(decoded)
}

// PhysicalPath resolves a physical name to its item file on disk. VSS
// buckets item files into a subdirectory named after the physical name's
// first letter (data/A/AAAAAAAA, data/B/BCDEFGHJ, ...).
func (db *Database) PhysicalPath(phys PhysicalName) string {
	name := phys.String()
	return filepath.Join(db.DataPath, name[:1], name)
}

// OpenProject opens the project item file named by phys.
func (db *Database) OpenProject(phys PhysicalName) (*ProjectItem, error) {
	return OpenProjectItem(db.PhysicalPath(phys), db.Decoder)
}

// OpenFile opens the file item file named by phys.
func (db *Database) OpenFile(phys PhysicalName) (*FileItem, error) {
	return OpenFileItem(db.PhysicalPath(phys), db.Decoder)
}

// OpenRootProject opens the database's top-level project ("$/").
func (db *Database) OpenRootProject() (*ProjectItem, error) {
	return db.OpenProject(RootPhysicalName)
}

// Lock takes a shared, non-blocking advisory lock on srcsafe.ini, the same
// file VSS clients themselves lock, so a concurrent exclusive locker (a
// live VSS client mid-write) is detected instead of read silently
// mid-mutation. Read-only use of this package should call it before
// walking a database and Unlock when done.
func (db *Database) Lock() error {
	f, err := os.Open(filepath.Join(db.RootPath, "srcsafe.ini"))
	if err != nil {
		return err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH|unix.LOCK_NB); err != nil {
		f.Close()
		return fmt.Errorf("vss: database appears to be in use: %w", err)
	}
	db.lockFile = f
	return nil
}

// Unlock releases the lock taken by Lock, a no-op if Lock was never called.
func (db *Database) Unlock() error {
	if db.lockFile == nil {
		return nil
	}
	err := unix.Flock(int(db.lockFile.Fd()), unix.LOCK_UN)
	db.lockFile.Close()
	db.lockFile = nil
	return err
}
