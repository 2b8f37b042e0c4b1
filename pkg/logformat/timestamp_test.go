package logformat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScanLeadingTimestamp(t *testing.T) {
	s := NewTimestampScanner()

	tests := []struct {
		name string
		line string
		want string
		rest string
	}{
		{
			name: "iso without zone",
			line: "2024-01-01T00:00:00 INFO start",
			want: "2024-01-01 00:00:00",
			rest: "INFO start",
		},
		{
			name: "rfc3339 with zone",
			line: "2024-01-15T10:30:45Z request handled",
			want: "2024-01-15 10:30:45",
			rest: "request handled",
		},
		{
			name: "rfc3339 with millis",
			line: "2024-01-15T10:30:45.123Z done",
			want: "2024-01-15 10:30:45",
			rest: "done",
		},
		{
			name: "space separated",
			line: "2024-01-15 10:30:45 worker idle",
			want: "2024-01-15 10:30:45",
			rest: "worker idle",
		},
		{
			name: "space separated with millis",
			line: "2024-01-15 10:30:45.123 worker idle",
			want: "2024-01-15 10:30:45",
			rest: "worker idle",
		},
		{
			name: "bracketed",
			line: "[2024-01-15 10:30:45] cache warm",
			want: "2024-01-15 10:30:45",
			rest: "cache warm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, rest := s.Scan(tt.line)
			require.NotNil(t, ts)
			require.Equal(t, tt.want, ts.Format("2006-01-02 15:04:05"))
			require.Equal(t, tt.rest, rest)
		})
	}
}

func TestScanNoMatch(t *testing.T) {
	s := NewTimestampScanner()

	for _, line := range []string{
		"INFO started at 2024-01-15T10:30:45Z", // stamp not at line start
		"plain text",
		"",
		"12345 not a stamp",
	} {
		ts, rest := s.Scan(line)
		require.Nil(t, ts, line)
		require.Equal(t, line, rest)
	}
}

func TestScanSyslogBorrowsCurrentYear(t *testing.T) {
	s := NewTimestampScanner()

	ts, rest := s.Scan("Jan 15 10:30:45 sshd[1234]: accepted")
	require.NotNil(t, ts)
	require.Equal(t, time.Now().Year(), ts.Year())
	require.Equal(t, time.January, ts.Month())
	require.Equal(t, 15, ts.Day())
	require.Equal(t, "sshd[1234]: accepted", rest)
}

func TestScanTimeOnlyBorrowsToday(t *testing.T) {
	s := NewTimestampScanner()

	ts, rest := s.Scan("10:30:45.123 tick")
	require.NotNil(t, ts)
	require.Equal(t, time.Now().Day(), ts.Day())
	require.Equal(t, 10, ts.Hour())
	require.Equal(t, "tick", rest)
}

func TestFormatTime(t *testing.T) {
	require.Equal(t, "", FormatTime(nil))

	ts := time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)
	require.Equal(t, "2024-01-15 10:30:45", FormatTime(&ts))
}
