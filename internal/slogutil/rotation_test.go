package slogutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"100", 100, false},
		{"100b", 100, false},
		{"1KB", 1024, false},
		{" 10 kb ", 10240, false},
		{"10MB", 10 << 20, false},
		{"1GB", 1 << 30, false},
		{"1.5MB", int64(1.5 * (1 << 20)), false},
		{"invalid", 0, true},
		{"10TB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestRotatingFile_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	rf, err := OpenRotatingFile(path, 50, 2)
	if err != nil {
		t.Fatalf("OpenRotatingFile() error = %v", err)
	}
	line := []byte(strings.Repeat("a", 29) + "\n")
	for i := 0; i < 5; i++ {
		if _, err := rf.Write(line); err != nil {
			t.Fatalf("Write %d error = %v", i, err)
		}
	}
	if err := rf.Close(); err != nil {
		t.Fatal(err)
	}

	// every write after the first rotates, so two backups remain
	for _, p := range []string{path, path + ".1", path + ".2"} {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("%s: %v", filepath.Base(p), err)
			continue
		}
		if !bytes.Equal(data, line) {
			t.Errorf("%s holds %q, want one line", filepath.Base(p), data)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("only two backups should be kept")
	}
}

func TestRotatingFile_NoBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	rf, err := OpenRotatingFile(path, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()

	_, _ = rf.Write([]byte("first line\n"))
	_, _ = rf.Write([]byte("second\n"))

	data, _ := os.ReadFile(path)
	if string(data) != "second\n" {
		t.Errorf("log = %q, want only the second line", data)
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("no backup should be written")
	}
}

func TestRotatingFile_WriteAfterClose(t *testing.T) {
	rf, err := OpenRotatingFile(filepath.Join(t.TempDir(), "run.log"), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	_ = rf.Close()
	if _, err := rf.Write([]byte("x")); err == nil {
		t.Error("Write after Close should fail")
	}
}
