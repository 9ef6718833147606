package repo

import (
	"os"
	"syscall"
)

// fileStat is the subset of inode metadata the staging index records.
type fileStat struct {
	CTimeSec  uint32
	CTimeNsec uint32
	MTimeSec  uint32
	MTimeNsec uint32
	Dev       uint32
	Ino       uint32
	UID       uint32
	GID       uint32
	Size      uint32
}

// statFile reads inode metadata for an index entry from the Linux stat
// structure.
func statFile(info os.FileInfo) fileStat {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileStat{
			MTimeSec:  uint32(info.ModTime().Unix()),
			MTimeNsec: uint32(info.ModTime().Nanosecond()),
			Size:      uint32(info.Size()),
		}
	}
	return fileStat{
		CTimeSec:  uint32(st.Ctim.Sec),
		CTimeNsec: uint32(st.Ctim.Nsec),
		MTimeSec:  uint32(st.Mtim.Sec),
		MTimeNsec: uint32(st.Mtim.Nsec),
		Dev:       uint32(st.Dev),
		Ino:       uint32(st.Ino),
		UID:       st.Uid,
		GID:       st.Gid,
		Size:      uint32(st.Size),
	}
}
