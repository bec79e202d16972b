// Package efmmap persists an eliasfano.Monotone to a pair of files and
// reopens it with the lower-bit payload memory-mapped instead of loaded
// onto the heap, so a process can query a structure far larger than it
// wants to keep resident. See spec.md §4.8.
package efmmap

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/xflash-panda/eliasfano/pkg/eliasfano"
)

const (
	magic         = "EFM1"
	objectVersion = uint32(1)
)

// objectFileName and lowerBitsFileName are the two files a dump is split
// across: a small metadata-plus-upper-bits file loaded normally, and the
// lower-bit payload, typically the bulk of the structure's size, which
// Load memory-maps instead.
func objectFileName(basePath string) string    { return basePath + ".object" }
func lowerBitsFileName(basePath string) string { return basePath + ".lowerbits" }

// Dump writes m to basePath+".object" and basePath+".lowerbits".
func Dump(basePath string, m *eliasfano.Monotone) error {
	if err := writeObjectFile(objectFileName(basePath), m); err != nil {
		return err
	}
	if err := writeLowerBitsFile(lowerBitsFileName(basePath), m.LowerWords()); err != nil {
		return err
	}
	return nil
}

func writeObjectFile(path string, m *eliasfano.Monotone) (err error) {
	f, ferr := os.Create(path)
	if ferr != nil {
		return wrapIO(ferr)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = wrapIO(cerr)
		}
	}()

	upper := m.UpperWords()
	header := make([]byte, 4+4+8+8+8+8)
	copy(header[0:4], magic)
	binary.LittleEndian.PutUint32(header[4:8], objectVersion)
	binary.LittleEndian.PutUint64(header[8:16], m.N())
	binary.LittleEndian.PutUint64(header[16:24], m.U())
	binary.LittleEndian.PutUint64(header[24:32], uint64(m.L()))
	binary.LittleEndian.PutUint64(header[32:40], uint64(len(upper)))
	if _, err = f.Write(header); err != nil {
		return wrapIO(err)
	}
	if err = writeWords(f, upper); err != nil {
		return wrapIO(err)
	}
	return nil
}

func writeLowerBitsFile(path string, words []uint64) error {
	f, err := os.Create(path)
	if err != nil {
		return wrapIO(err)
	}
	defer f.Close()
	if err := writeWords(f, words); err != nil {
		return wrapIO(err)
	}
	return nil
}

func writeWords(f *os.File, words []uint64) error {
	buf := make([]byte, len(words)*8)
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	_, err := f.Write(buf)
	return err
}

// Mapped holds the memory-mapped lower-bits file backing a Monotone
// loaded via Load. Close unmaps it; the embedded Monotone must not be
// used afterward.
type Mapped struct {
	*eliasfano.Monotone
	mmapped []byte
}

// Load reopens a dump written by Dump, mapping its lower-bits file
// read-only.
func Load(basePath string) (*Mapped, error) {
	n, u, l, upper, err := readObjectFile(objectFileName(basePath))
	if err != nil {
		return nil, err
	}

	lowerWords, raw, err := mmapLowerBits(lowerBitsFileName(basePath), n, l)
	if err != nil {
		return nil, err
	}

	return &Mapped{
		Monotone: eliasfano.FromParts(n, u, l, upper, lowerWords),
		mmapped:  raw,
	}, nil
}

// Close unmaps the lower-bits file. It is safe to call once.
func (m *Mapped) Close() error {
	if m.mmapped == nil {
		return nil
	}
	err := unix.Munmap(m.mmapped)
	m.mmapped = nil
	if err != nil {
		return wrapIO(err)
	}
	return nil
}

func readObjectFile(path string) (n, u uint64, l uint, upper []uint64, err error) {
	data, rerr := os.ReadFile(path)
	if rerr != nil {
		return 0, 0, 0, nil, wrapIO(rerr)
	}
	if len(data) < 40 {
		return 0, 0, 0, nil, fmt.Errorf("%s: header too short: %w", path, ErrFormat)
	}
	if string(data[0:4]) != magic {
		return 0, 0, 0, nil, fmt.Errorf("%s: bad magic: %w", path, ErrFormat)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != objectVersion {
		return 0, 0, 0, nil, fmt.Errorf("%s: unsupported version %d: %w", path, version, ErrFormat)
	}
	n = binary.LittleEndian.Uint64(data[8:16])
	u = binary.LittleEndian.Uint64(data[16:24])
	l = uint(binary.LittleEndian.Uint64(data[24:32]))
	upperLen := binary.LittleEndian.Uint64(data[32:40])

	want := 40 + int(upperLen)*8
	if len(data) != want {
		return 0, 0, 0, nil, fmt.Errorf("%s: expected %d bytes, got %d: %w", path, want, len(data), ErrFormat)
	}

	upper = make([]uint64, upperLen)
	for i := range upper {
		upper[i] = binary.LittleEndian.Uint64(data[40+i*8:])
	}
	return n, u, l, upper, nil
}

func mmapLowerBits(path string, n uint64, l uint) ([]uint64, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, wrapIO(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, wrapIO(err)
	}

	wantWords := (n*uint64(l) + 63) / 64
	if l == 0 {
		wantWords = 0
	}
	if info.Size() != int64(wantWords)*8 {
		if info.Size() == 0 && wantWords == 0 {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("%s: expected %d bytes, got %d: %w", path, wantWords*8, info.Size(), ErrFormat)
	}
	if info.Size() == 0 {
		return nil, nil, nil
	}

	raw, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, wrapIO(err)
	}

	// mmap returns page-aligned memory, so reinterpreting it as []uint64
	// needs no copy: every page boundary is also a word boundary. The
	// dump format is little-endian (writeWords), so this view is only
	// correct to read on a little-endian host; efmmap doesn't attempt to
	// byte-swap a cross-endian dump.
	words := unsafe.Slice((*uint64)(unsafe.Pointer(&raw[0])), wantWords)
	return words, raw, nil
}
