package extract

import "testing"

func TestExtractNBDConnectionsVddk(t *testing.T) {
	var out = ExtractNBDConnections([]string{
		"running nbdkit --exit-with-parent --filter=retry vddk server=esxi.example.com thumbprint=AA:BB:CC libdir=/opt/vmware-vix-disklib file=\"[datastore1] guest/guest.vmdk\" -U /tmp/v2vnbd1.sock",
		"nbdkit: debug: bound to unix socket /tmp/v2vnbd1.sock",
	})

	if len(out) != 1 {
		t.Fatalf("Expected 1 connection, got %d", len(out))
	}

	var conn = out[0]
	if conn.Plugin != "vddk" {
		t.Errorf("Unexpected plugin %q", conn.Plugin)
	}

	if conn.Server != "esxi.example.com" || conn.Thumbprint != "AA:BB:CC" || conn.VddkLibdir != "/opt/vmware-vix-disklib" {
		t.Errorf("Unexpected vddk fields: %+v", conn)
	}

	if conn.SocketPath != "/tmp/v2vnbd1.sock" {
		t.Errorf("Unexpected socket %q", conn.SocketPath)
	}

	if len(conn.Filters) != 1 || conn.Filters[0] != "retry" {
		t.Errorf("Unexpected filters: %v", conn.Filters)
	}

	if conn.PluginArgs["file"] != "[datastore1] guest/guest.vmdk" {
		t.Errorf("Quoted file arg mishandled: %q", conn.PluginArgs["file"])
	}
}

func TestExtractNBDConnectionsSocketLookahead(t *testing.T) {
	var lines = []string{"running nbdkit file file=/var/tmp/disk.img"}
	for range nbdSocketWindow - 1 {
		lines = append(lines, "noise")
	}
	lines = append(lines, "nbdkit: debug: listening on socket /tmp/sock0")

	var out = ExtractNBDConnections(lines)
	if len(out) != 1 || out[0].SocketPath != "/tmp/sock0" {
		t.Fatalf("Socket at window edge should pair: %+v", out)
	}

	// One line beyond the window it must not pair
	lines = []string{"running nbdkit file file=/var/tmp/disk.img"}
	for range nbdSocketWindow + 1 {
		lines = append(lines, "noise")
	}
	lines = append(lines, "nbdkit: debug: listening on socket /tmp/sock0")

	out = ExtractNBDConnections(lines)
	if len(out) != 1 || out[0].SocketPath != "" {
		t.Errorf("Socket beyond window paired anyway: %+v", out)
	}
}

func TestExtractNBDConnectionsDedupe(t *testing.T) {
	var out = ExtractNBDConnections([]string{
		"running nbdkit curl url=https://host/disk1 -U /tmp/a.sock",
		"retrying: nbdkit curl url=https://host/disk1 -U /tmp/a.sock",
		"running nbdkit curl url=https://host/disk2 -U /tmp/b.sock",
	})

	if len(out) != 2 {
		t.Fatalf("Expected 2 connections after dedupe, got %d", len(out))
	}
}

func TestExtractNBDConnectionsNoPlugin(t *testing.T) {
	var out = ExtractNBDConnections([]string{
		"nbdkit: debug: some chatter without a plugin word",
	})

	if len(out) != 0 {
		t.Errorf("Chatter should not produce connections: %+v", out)
	}
}
