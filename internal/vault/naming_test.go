package vault

import (
	"testing"
)

func TestBuildStorageName(t *testing.T) {
	tests := []struct {
		key      string
		compress bool
		expected string
	}{
		{"diary", false, "diary.tar.gpg"},
		{"diary", true, "diary.tar.gz.gpg"},
		{"my.notes", false, "my.notes.tar.gpg"},
		{"photos-2024", true, "photos-2024.tar.gz.gpg"},
	}

	for _, tc := range tests {
		got := BuildStorageName(tc.key, tc.compress)
		if got != tc.expected {
			t.Errorf("BuildStorageName(%q, %v) = %q, expected %q", tc.key, tc.compress, got, tc.expected)
		}
	}
}

func TestStripSuffix_RoundTrip(t *testing.T) {
	keys := []string{"diary", "a", "my.notes", "archive.tar", "report.gpg", "with space", "ünïcode", ".hidden"}

	for _, key := range keys {
		for _, compress := range []bool{false, true} {
			name := BuildStorageName(key, compress)
			gotKey, gotCompressed, ok := StripSuffix(name)
			if !ok {
				t.Errorf("StripSuffix(%q) not recognized", name)
				continue
			}
			if gotKey != key || gotCompressed != compress {
				t.Errorf("StripSuffix(%q) = (%q, %v), expected (%q, %v)", name, gotKey, gotCompressed, key, compress)
			}
		}
	}
}

func TestStripSuffix_NotAnEntry(t *testing.T) {
	names := []string{
		"notes",
		"notes.tar",
		"notes.gpg",
		"notes.tar.gz",
		"notes.tgz.gpg",
		"notes.tar.bz2.gpg",
		"notes.tar.gpg.bak",
		".tar.gpg",
		".tar.gz.gpg",
		"",
	}

	for _, name := range names {
		if key, _, ok := StripSuffix(name); ok {
			t.Errorf("StripSuffix(%q) = %q, expected not an entry", name, key)
		}
	}
}

func TestSuffix(t *testing.T) {
	if SuffixFor(false) != Plain || SuffixFor(true) != Compressed {
		t.Fatal("SuffixFor maps compression flags to the wrong family")
	}
	if Plain.Ext() != ".tar.gpg" || Compressed.Ext() != ".tar.gz.gpg" {
		t.Errorf("unexpected extensions: %q, %q", Plain.Ext(), Compressed.Ext())
	}
	if Plain.Compressed() || !Compressed.Compressed() {
		t.Error("Compressed() reports the wrong state")
	}
	if Plain.String() != "plain" || Compressed.String() != "compressed" {
		t.Errorf("unexpected names: %s, %s", Plain, Compressed)
	}
}
