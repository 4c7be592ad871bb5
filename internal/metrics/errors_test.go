package metrics_test

import (
	"testing"

	"github.com/torosent/ioprobe/internal/metrics"
)

func TestFriendlyErrorName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"*fs.PathError", "File path error"},
		{"os.PathError", "File path error"},
		{"syscall.Errno", "Syscall error"},
		{"*os.SyscallError", "Syscall error"},
		{"*context.deadlineExceededError", "Context deadline exceeded"},
		{"", "Unknown error"},
		{"main.customError", "Custom Error"},
	}

	for _, tc := range cases {
		if got := metrics.FriendlyErrorName(tc.in); got != tc.want {
			t.Errorf("FriendlyErrorName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
