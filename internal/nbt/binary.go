package nbt

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

var (
	ErrInvalidTag      = errors.New("nbt: invalid tag type")
	ErrRootNotCompound = errors.New("nbt: root tag is not a compound")
	ErrTooDeep         = errors.New("nbt: tree exceeds maximum depth")
	ErrNegativeLength  = errors.New("nbt: negative length")
)

// MaxDepth bounds nesting while decoding untrusted input.
const MaxDepth = 512

// Compression selects the outer framing of a tag file.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZlib
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZlib:
		return "zlib"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses the names produced by Compression.String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "gzip":
		return CompressionGzip, nil
	case "zlib":
		return CompressionZlib, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}

// DetectCompression sniffs the first bytes of a tag file.
func DetectCompression(head []byte) Compression {
	switch {
	case len(head) >= 2 && head[0] == 0x1f && head[1] == 0x8b:
		return CompressionGzip
	case len(head) >= 2 && head[0] == 0x78 && (uint16(head[0])<<8|uint16(head[1]))%31 == 0:
		return CompressionZlib
	default:
		return CompressionNone
	}
}

// Decode reads one named root compound.
func Decode(r io.Reader) (string, Compound, error) {
	d := decoder{r: bufio.NewReader(r)}
	typ, err := d.byte()
	if err != nil {
		return "", nil, err
	}
	if TagType(typ) != TagCompound {
		return "", nil, ErrRootNotCompound
	}
	name, err := d.string()
	if err != nil {
		return "", nil, err
	}
	root, err := d.payload(TagCompound, 0)
	if err != nil {
		return "", nil, err
	}
	return name, root.(Compound), nil
}

// Encode writes root as a named compound.
func Encode(w io.Writer, name string, root Compound) error {
	bw := bufio.NewWriter(w)
	e := encoder{w: bw}
	e.byte(byte(TagCompound))
	e.string(name)
	e.payload(root)
	if e.err != nil {
		return e.err
	}
	return bw.Flush()
}

// Unmarshal decodes a possibly compressed tag blob.
func Unmarshal(data []byte) (string, Compound, Compression, error) {
	c := DetectCompression(data)
	r, err := decompress(bytes.NewReader(data), c)
	if err != nil {
		return "", nil, c, err
	}
	name, root, err := Decode(r)
	return name, root, c, err
}

// Marshal encodes root with the requested compression.
func Marshal(name string, root Compound, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(&buf, name, root, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadFile decodes a tag file, detecting its compression.
func ReadFile(path string) (string, Compound, Compression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, CompressionNone, err
	}
	name, root, c, err := Unmarshal(data)
	if err != nil {
		return "", nil, c, fmt.Errorf("decode %s: %w", path, err)
	}
	return name, root, c, nil
}

// WriteFile encodes root to path using compression c.
func WriteFile(path, name string, root Compound, c Compression) error {
	data, err := Marshal(name, root, c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func decompress(r io.Reader, c Compression) (io.Reader, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionZlib:
		return zlib.NewReader(r)
	default:
		return r, nil
	}
}

func write(w io.Writer, name string, root Compound, c Compression) error {
	switch c {
	case CompressionGzip:
		zw := gzip.NewWriter(w)
		if err := Encode(zw, name, root); err != nil {
			return err
		}
		return zw.Close()
	case CompressionZlib:
		zw := zlib.NewWriter(w)
		if err := Encode(zw, name, root); err != nil {
			return err
		}
		return zw.Close()
	default:
		return Encode(w, name, root)
	}
}

type decoder struct {
	r   *bufio.Reader
	buf [8]byte
}

func (d *decoder) byte() (byte, error) {
	return d.r.ReadByte()
}

func (d *decoder) read(n int) ([]byte, error) {
	if _, err := io.ReadFull(d.r, d.buf[:n]); err != nil {
		return nil, err
	}
	return d.buf[:n], nil
}

func (d *decoder) length() (int, error) {
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	n := int32(binary.BigEndian.Uint32(b))
	if n < 0 {
		return 0, ErrNegativeLength
	}
	return int(n), nil
}

// arrayChunk caps how many array elements are allocated ahead of the input
// that backs them, so a forged length cannot force a huge allocation.
const arrayChunk = 4096

func readArray[E byte | int32 | int64](r io.Reader, n int) ([]E, error) {
	out := make([]E, 0, min(n, arrayChunk))
	for len(out) < n {
		start, k := len(out), min(n-len(out), arrayChunk)
		out = slices.Grow(out, k)[:start+k]
		if err := binary.Read(r, binary.BigEndian, out[start:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *decoder) string() (string, error) {
	b, err := d.read(2)
	if err != nil {
		return "", err
	}
	s := make([]byte, binary.BigEndian.Uint16(b))
	if _, err := io.ReadFull(d.r, s); err != nil {
		return "", err
	}
	return string(s), nil
}

func (d *decoder) payload(t TagType, depth int) (Tag, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}
	switch t {
	case TagByte:
		b, err := d.byte()
		return Byte(int8(b)), err
	case TagShort:
		b, err := d.read(2)
		if err != nil {
			return nil, err
		}
		return Short(int16(binary.BigEndian.Uint16(b))), nil
	case TagInt:
		b, err := d.read(4)
		if err != nil {
			return nil, err
		}
		return Int(int32(binary.BigEndian.Uint32(b))), nil
	case TagLong:
		b, err := d.read(8)
		if err != nil {
			return nil, err
		}
		return Long(int64(binary.BigEndian.Uint64(b))), nil
	case TagFloat:
		b, err := d.read(4)
		if err != nil {
			return nil, err
		}
		return Float(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case TagDouble:
		b, err := d.read(8)
		if err != nil {
			return nil, err
		}
		return Double(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
	case TagString:
		s, err := d.string()
		return String(s), err
	case TagByteArray:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		out, err := readArray[byte](d.r, n)
		return ByteArray(out), err
	case TagIntArray:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		out, err := readArray[int32](d.r, n)
		return IntArray(out), err
	case TagLongArray:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		out, err := readArray[int64](d.r, n)
		return LongArray(out), err
	case TagList:
		elem, err := d.byte()
		if err != nil {
			return nil, err
		}
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		list := &List{Elem: TagType(elem), Items: make([]Tag, 0, min(n, 1024))}
		if n == 0 {
			list.Elem = TagEnd
		}
		for range n {
			item, err := d.payload(TagType(elem), depth+1)
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, item)
		}
		return list, nil
	case TagCompound:
		out := make(Compound)
		for {
			typ, err := d.byte()
			if err != nil {
				return nil, err
			}
			if TagType(typ) == TagEnd {
				return out, nil
			}
			name, err := d.string()
			if err != nil {
				return nil, err
			}
			child, err := d.payload(TagType(typ), depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			out[name] = child
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidTag, byte(t))
	}
}

type encoder struct {
	w   *bufio.Writer
	err error
	buf [8]byte
}

func (e *encoder) byte(b byte) {
	if e.err == nil {
		e.err = e.w.WriteByte(b)
	}
}

func (e *encoder) raw(b []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

func (e *encoder) u16(v uint16) {
	binary.BigEndian.PutUint16(e.buf[:2], v)
	e.raw(e.buf[:2])
}

func (e *encoder) u32(v uint32) {
	binary.BigEndian.PutUint32(e.buf[:4], v)
	e.raw(e.buf[:4])
}

func (e *encoder) u64(v uint64) {
	binary.BigEndian.PutUint64(e.buf[:8], v)
	e.raw(e.buf[:8])
}

func (e *encoder) string(s string) {
	if len(s) > math.MaxUint16 && e.err == nil {
		e.err = fmt.Errorf("nbt: string of %d bytes exceeds %d", len(s), math.MaxUint16)
		return
	}
	e.u16(uint16(len(s)))
	e.raw([]byte(s))
}

func (e *encoder) payload(t Tag) {
	switch v := t.(type) {
	case Byte:
		e.byte(byte(v))
	case Short:
		e.u16(uint16(v))
	case Int:
		e.u32(uint32(v))
	case Long:
		e.u64(uint64(v))
	case Float:
		e.u32(math.Float32bits(float32(v)))
	case Double:
		e.u64(math.Float64bits(float64(v)))
	case String:
		e.string(string(v))
	case ByteArray:
		e.u32(uint32(len(v)))
		e.raw(v)
	case IntArray:
		e.u32(uint32(len(v)))
		for _, x := range v {
			e.u32(uint32(x))
		}
	case LongArray:
		e.u32(uint32(len(v)))
		for _, x := range v {
			e.u64(uint64(x))
		}
	case *List:
		e.byte(byte(v.Elem))
		e.u32(uint32(len(v.Items)))
		for _, item := range v.Items {
			e.payload(item)
		}
	case Compound:
		for _, k := range v.SortedKeys() {
			child := v[k]
			if child == nil {
				continue
			}
			e.byte(byte(child.Type()))
			e.string(k)
			e.payload(child)
		}
		e.byte(byte(TagEnd))
	default:
		if e.err == nil {
			e.err = fmt.Errorf("%w: %T", ErrInvalidTag, t)
		}
	}
}
