// vfs.go - guest file table: ramdisk, serial, event stream, dispinfo, framebuffer
//
// Grounded on original_source/.../nanos-lite/src/fs.c. Per the design
// notes, the original's function-pointer-in-struct file table entries are
// modeled here as a tagged backend enum with one switch in read/write,
// instead of carrying nil-able function fields.

package main

import "fmt"

// backendKind tags what a FileEntry's read/write actually talks to.
type backendKind int

const (
	backendRAMDisk backendKind = iota
	backendSerialOut
	backendSerialIn
	backendFramebuffer
	backendEvents
	backendDispInfo
)

// FileEntry is one row of the file table (§3's FileInfo).
type FileEntry struct {
	Name       string
	Size       uint32
	DiskOffset uint32
	Backend    backendKind
	OpenOffset uint32
}

// FileTable is the guest VFS: a fixed set of reserved descriptors plus
// ramdisk-backed files plus the two device pseudo-files.
type FileTable struct {
	entries []FileEntry
	m       *Machine
	disk    *RAMDisk
}

// NewFileTable builds the table with the four reserved descriptors
// (stdin=0, stdout=1, stderr=2, fb=3) followed by the ramdisk manifest and
// the two pseudo-files, matching fs.c's static file_table layout.
func NewFileTable(m *Machine) *FileTable {
	t := &FileTable{m: m, disk: NewRAMDisk()}
	t.entries = []FileEntry{
		{Name: "stdin", Backend: backendSerialIn},
		{Name: "stdout", Backend: backendSerialOut},
		{Name: "stderr", Backend: backendSerialOut},
		{Name: "fb", Backend: backendFramebuffer},
	}
	for _, f := range t.disk.Manifest() {
		t.entries = append(t.entries, FileEntry{
			Name: f.Name, Size: f.Size, DiskOffset: f.Offset, Backend: backendRAMDisk,
		})
	}
	t.entries = append(t.entries,
		FileEntry{Name: "/dev/events", Backend: backendEvents},
		FileEntry{Name: "/proc/dispinfo", Backend: backendDispInfo},
	)
	// fb's declared size mirrors init_fs's GPU-config-derived size.
	t.entries[FD_FB].Size = uint32(m.FB.Width() * m.FB.Height() * 4)
	return t
}

// Open performs a linear search by name and resets open_offset, matching
// fs_open; returns -1 on miss.
func (t *FileTable) Open(name string) int {
	for i := range t.entries {
		if t.entries[i].Name == name {
			t.entries[i].OpenOffset = 0
			return i
		}
	}
	return -1
}

func (t *FileTable) validFD(fd int) bool {
	return fd >= 0 && fd < len(t.entries)
}

// Read dispatches by backend kind. Device backends are never bounded by
// size; ramdisk reads clamp to the remaining file size.
func (t *FileTable) Read(fd int, length int) ([]byte, int) {
	if !t.validFD(fd) {
		return nil, -1
	}
	e := &t.entries[fd]
	switch e.Backend {
	case backendSerialIn:
		return nil, 0 // no interactive stdin wiring; always reports EOF
	case backendEvents:
		s := t.m.Kbd.ReadEventString()
		if s == "" {
			return nil, 0
		}
		data := []byte(s)
		if len(data) > length {
			data = data[:length]
		}
		return data, len(data)
	case backendDispInfo:
		s := fmt.Sprintf("WIDTH : %d\nHEIGHT : %d\n", t.m.FB.Width(), t.m.FB.Height())
		data := []byte(s)
		if len(data) > length {
			data = data[:length]
		}
		return data, len(data)
	case backendFramebuffer, backendSerialOut:
		return nil, -1 // write-only backends
	default: // ramdisk
		n := length
		remaining := int(e.Size) - int(e.OpenOffset)
		if n > remaining {
			n = remaining
		}
		if n < 0 {
			n = 0
		}
		data := t.disk.ReadAt(e.DiskOffset+e.OpenOffset, n)
		e.OpenOffset += uint32(n)
		return data, n
	}
}

// Write dispatches by backend kind. For device entries, open_offset is
// still advanced by the returned count — relied on by the framebuffer,
// where seeking sets the pixel cursor.
func (t *FileTable) Write(fd int, data []byte) int {
	if !t.validFD(fd) {
		return -1
	}
	e := &t.entries[fd]
	switch e.Backend {
	case backendSerialOut:
		n, _ := t.m.Serial.Write(data)
		e.OpenOffset += uint32(n)
		return n
	case backendFramebuffer:
		n := t.m.FB.WriteFB(e.OpenOffset, data)
		e.OpenOffset += uint32(n)
		return n
	case backendSerialIn, backendEvents, backendDispInfo:
		return -1 // read-only backends
	default: // ramdisk
		n := len(data)
		remaining := int(e.Size) - int(e.OpenOffset)
		if n > remaining {
			n = remaining
		}
		if n < 0 {
			n = 0
		}
		t.disk.WriteAt(e.DiskOffset+e.OpenOffset, data[:n])
		e.OpenOffset += uint32(n)
		return n
	}
}

// Lseek implements SEEK_SET/CUR/END, clamping the result to [0, size].
func (t *FileTable) Lseek(fd int, offset int32, whence int) (uint32, error) {
	if !t.validFD(fd) {
		return 0, fmt.Errorf("vfs: bad fd %d", fd)
	}
	e := &t.entries[fd]
	var newOffset int64
	switch whence {
	case SEEK_SET:
		newOffset = int64(offset)
	case SEEK_CUR:
		newOffset = int64(e.OpenOffset) + int64(offset)
	case SEEK_END:
		newOffset = int64(e.Size) + int64(offset)
	default:
		return 0, fmt.Errorf("vfs: unknown whence %d", whence)
	}
	if newOffset < 0 {
		newOffset = 0
	}
	if newOffset > int64(e.Size) {
		newOffset = int64(e.Size)
	}
	e.OpenOffset = uint32(newOffset)
	return e.OpenOffset, nil
}

// Close is a no-op that always succeeds, matching fs_close.
func (t *FileTable) Close(fd int) int {
	return 0
}

// RawBytes returns an open ramdisk-backed file's full contents, for the
// ELF loader's SYS_exit/SYS_execve reload path. Non-ramdisk fds return nil.
func (t *FileTable) RawBytes(fd int) []byte {
	if !t.validFD(fd) {
		return nil
	}
	e := &t.entries[fd]
	if e.Backend != backendRAMDisk {
		return nil
	}
	return t.disk.ReadAt(e.DiskOffset, int(e.Size))
}
