package pos

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextTransactionNo(t *testing.T) {
	cases := []struct {
		last string
		want string
	}{
		{"", "00000001"},
		{"00000007", "00000008"},
		{"00000099", "00000100"},
		{"99999999", "100000000"},
		{"not-a-number", "00000001"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, NextTransactionNo(tc.last), "last=%q", tc.last)
	}
}
