package collect

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/opnlaas/v2vlens/config"
	"github.com/z46-dev/go-logger"
	"golang.org/x/crypto/ssh"
)

var collectLog *logger.Logger = logger.NewLogger().SetPrefix("[COLLECT]", logger.BoldCyan).IncludeTimestamp()

// Collector pulls virt-v2v logs off remote conversion hosts into the local
// watch directory, where the ingest watcher picks them up like any other log.
type Collector struct {
	inventory Inventory
	remoteDir string
	localDir  string
	port      int
	keyAuth   ssh.AuthMethod
}

func NewCollector() (c *Collector, err error) {
	c = &Collector{
		remoteDir: config.Config.Collect.RemoteDir,
		localDir:  config.Config.Logs.WatchDir,
		port:      config.Config.Collect.SSHPort,
	}

	if c.inventory, err = LoadInventory(config.Config.Collect.InventoryFile); err != nil {
		return nil, err
	}

	if keyPath := config.Config.Collect.PrivateKey; keyPath != "" {
		if c.keyAuth, err = WithPrivateKeyFile(keyPath); err != nil {
			return nil, fmt.Errorf("load collector private key: %w", err)
		}
	}

	return
}

// Sweep fetches any remote log not yet present locally, once per host. A
// failing host is logged and skipped so one dead machine doesn't stall the
// rest of the sweep.
func (c *Collector) Sweep() (fetched int) {
	for _, host := range c.inventory.Hosts {
		var (
			n   int
			err error
		)

		if n, err = c.sweepHost(host); err != nil {
			collectLog.Errorf("Sweep of %s failed: %v\n", host.Name, err)
			continue
		}

		fetched += n
	}

	if fetched > 0 {
		collectLog.Successf("Fetched %d new conversion log(s)\n", fetched)
	}

	return
}

func (c *Collector) sweepHost(host InventoryHost) (fetched int, err error) {
	var (
		auth ssh.AuthMethod = c.keyAuth
		port int            = host.Port
		conn *SSHConnection
	)

	if auth == nil {
		auth = WithPassword(host.Password)
	}

	if port == 0 {
		port = c.port
	}

	if conn, err = Connect(host.Username, host.Address, port, auth); err != nil {
		return
	}

	defer conn.Close()

	var remoteFiles []string
	if remoteFiles, err = c.listRemoteLogs(conn); err != nil {
		return
	}

	for _, remote := range remoteFiles {
		var local string = filepath.Join(c.localDir, host.Name+"-"+path.Base(remote))

		if _, statErr := os.Stat(local); statErr == nil {
			continue
		}

		if err = conn.Reset(); err != nil {
			return
		}

		if err = c.fetchFile(conn, remote, local); err != nil {
			return
		}

		fetched++
	}

	return
}

func (c *Collector) listRemoteLogs(conn *SSHConnection) (files []string, err error) {
	var (
		status int
		output []byte
	)

	if status, output, err = conn.SendWithOutput(fmt.Sprintf("find %s -maxdepth 1 -type f -name '*.log'", c.remoteDir)); err != nil {
		return
	}

	if status != 0 {
		err = fmt.Errorf("remote listing exited with status %d: %s", status, strings.TrimSpace(string(output)))
		return
	}

	for _, line := range strings.Split(string(output), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}

	return
}

func (c *Collector) fetchFile(conn *SSHConnection, remote, local string) (err error) {
	var (
		status int
		output []byte
	)

	if status, output, err = conn.SendWithOutput("cat " + remote); err != nil {
		return
	}

	if status != 0 {
		err = fmt.Errorf("remote read of %s exited with status %d", remote, status)
		return
	}

	if err = os.MkdirAll(filepath.Dir(local), 0755); err != nil {
		return
	}

	// Write to a temp name first so the ingest watcher never sees a partial file
	var tmp string = local + ".part"
	if err = os.WriteFile(tmp, output, 0644); err != nil {
		return
	}

	err = os.Rename(tmp, local)
	return
}
