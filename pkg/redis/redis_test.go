package redis

import "testing"

const sampleInfo = "# Server\r\nredis_version:7.2.4\r\nuptime_in_seconds:42\r\n\r\n# Stats\r\nkeyspace_hits:3\r\nkeyspace_misses:1\r\nconnected_clients:2\r\n"

func TestParseInfo(t *testing.T) {
	fields := ParseInfo(sampleInfo)
	if fields["redis_version"] != "7.2.4" {
		t.Fatalf("unexpected version %q", fields["redis_version"])
	}
	if _, ok := fields["# Server"]; ok {
		t.Fatal("section headers must be skipped")
	}
	if fields["connected_clients"] != "2" {
		t.Fatalf("unexpected clients %q", fields["connected_clients"])
	}
}

func TestSelectStats(t *testing.T) {
	stats := selectStats(ParseInfo(sampleInfo))
	if stats["keyspace_hit_ratio"] != "0.75" {
		t.Fatalf("unexpected hit ratio %q", stats["keyspace_hit_ratio"])
	}
	if _, ok := stats["used_memory_human"]; ok {
		t.Fatal("absent fields must not be reported")
	}

	empty := selectStats(map[string]string{})
	if _, ok := empty["keyspace_hit_ratio"]; ok {
		t.Fatal("hit ratio needs at least one lookup")
	}
}
