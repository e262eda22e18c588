package util

import (
	"github.com/dustin/go-humanize"
)

// SizeFlag is a byte count given as "1048576", "1MiB" or "1MB".
type SizeFlag uint64

func (s SizeFlag) String() string {
	return humanize.IBytes(uint64(s))
}

func (s *SizeFlag) Set(value string) error {
	size, err := humanize.ParseBytes(value)
	if err != nil {
		return err
	}
	*s = SizeFlag(size)
	return nil
}

func (s SizeFlag) Type() string {
	return "size"
}
