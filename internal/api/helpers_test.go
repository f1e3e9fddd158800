package api

import (
	"fmt"
	"strconv"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func twoDigits(n int) string {
	return fmt.Sprintf("%02d", n)
}
