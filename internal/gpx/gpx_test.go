package gpx

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleGPX = `<?xml version="1.0" encoding="utf-8"?>
<gpx xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" version="1.0" creator="Groundspeak Pocket Query" xmlns="http://www.topografix.com/GPX/1/0">
  <name>My Finds Pocket Query</name>
  <time>2024-06-15T10:00:00Z</time>
  <wpt lat="59.329" lon="18.068">
    <time>2010-04-01T07:00:00</time>
    <name>GC1ABCD</name>
    <desc>Old Town Cache by someone</desc>
    <sym>Geocache Found</sym>
    <type>Geocache|Traditional Cache</type>
    <groundspeak:cache id="123456" available="True" archived="False" xmlns:groundspeak="http://www.groundspeak.com/cache/1/0/1">
      <groundspeak:name>Old Town Cache</groundspeak:name>
      <groundspeak:type>Traditional Cache</groundspeak:type>
      <groundspeak:logs>
        <groundspeak:log id="1001">
          <groundspeak:date>2023-01-01T10:00:00Z</groundspeak:date>
          <groundspeak:type>Found it</groundspeak:type>
          <groundspeak:finder id="4242">jesper</groundspeak:finder>
          <groundspeak:text encoded="False">TFTC &amp; happy new year</groundspeak:text>
        </groundspeak:log>
        <groundspeak:log id="1002">
          <groundspeak:date>2023-03-01T02:00:00Z</groundspeak:date>
          <groundspeak:type>Write note</groundspeak:type>
          <groundspeak:finder id="77">someone else</groundspeak:finder>
          <groundspeak:text encoded="False">Note</groundspeak:text>
        </groundspeak:log>
      </groundspeak:logs>
    </groundspeak:cache>
  </wpt>
  <wpt lat="59.1" lon="18.1">
    <name>GC2EVNT</name>
    <groundspeak:cache id="654321" xmlns:groundspeak="http://www.groundspeak.com/cache/1/0/1">
      <groundspeak:logs>
        <groundspeak:log id="2001">
          <groundspeak:date>2022-07-15T18:30:00Z</groundspeak:date>
          <groundspeak:type>Attended</groundspeak:type>
          <groundspeak:finder id="4242">jesper</groundspeak:finder>
        </groundspeak:log>
        <groundspeak:log id="2002">
          <groundspeak:date>2022-07-16T18:30:00Z</groundspeak:date>
          <groundspeak:type>Found it</groundspeak:type>
        </groundspeak:log>
      </groundspeak:logs>
    </groundspeak:cache>
  </wpt>
</gpx>
`

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(sampleGPX))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	want := []LogEntry{
		{Date: "2023-01-01T10:00:00Z", Type: "Found it", FinderID: "4242", Finder: "jesper", CacheCode: "GC1ABCD"},
		{Date: "2023-03-01T02:00:00Z", Type: "Write note", FinderID: "77", Finder: "someone else", CacheCode: "GC1ABCD"},
		{Date: "2022-07-15T18:30:00Z", Type: "Attended", FinderID: "4242", Finder: "jesper", CacheCode: "GC2EVNT"},
		{Date: "2022-07-16T18:30:00Z", Type: "Found it", CacheCode: "GC2EVNT"},
	}

	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(entries), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestParse_NoLogs(t *testing.T) {
	entries, err := Parse(strings.NewReader(`<gpx><wpt><name>GC1</name></wpt></gpx>`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %+v", entries)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finds.gpx")
	if err := os.WriteFile(path, []byte(sampleGPX), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("expected 4 entries, got %d", len(entries))
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.gpx"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}
