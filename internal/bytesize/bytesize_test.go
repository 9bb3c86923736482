package bytesize_test

import (
	"testing"

	"github.com/dsablic/klio/internal/bytesize"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{1, "1.00 B"},
		{1023, "1023.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
		{1 << 40, "1.00 TB"},
		{1 << 50, "1024.00 TB"},
	}

	for _, tt := range tests {
		if got := bytesize.Format(tt.in); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
