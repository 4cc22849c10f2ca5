package collect

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Inventory lists the conversion hosts to collect virt-v2v logs from.
// The YAML file intentionally stores passwords in plaintext; prefer the
// key-based auth from the main config where possible.
type Inventory struct {
	SourcePath string          `yaml:"-"`
	Hosts      []InventoryHost `yaml:"hosts"`
}

type InventoryHost struct {
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password,omitempty"`
	Port     int    `yaml:"port,omitempty"`
}

// LoadInventory reads the YAML inventory at the provided path. When the file
// does not exist, a template file is generated and an error is returned so
// the operator can populate the values.
func LoadInventory(path string) (inv Inventory, err error) {
	if strings.TrimSpace(path) == "" {
		err = errors.New("inventory path is empty")
		return
	}

	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if writeErr := writeInventoryTemplate(path); writeErr != nil {
				err = fmt.Errorf("generate inventory template: %w", writeErr)
				return
			}

			err = fmt.Errorf("no inventory found, created a template at %s. Please fill in your conversion hosts and try again", path)
			return
		}

		err = fmt.Errorf("read inventory: %w", err)
		return
	}

	if err = yaml.Unmarshal(data, &inv); err != nil {
		err = fmt.Errorf("parse inventory: %w", err)
		return
	}

	inv.SourcePath = path

	for i, host := range inv.Hosts {
		if strings.TrimSpace(host.Address) == "" {
			err = fmt.Errorf("inventory host %d has no address", i)
			return
		}

		if strings.TrimSpace(host.Name) == "" {
			inv.Hosts[i].Name = host.Address
		}
	}

	return
}

func writeInventoryTemplate(path string) (err error) {
	var template Inventory = Inventory{
		Hosts: []InventoryHost{{
			Name:     "conversion-host-1",
			Address:  "10.0.0.10",
			Username: "root",
			Password: "",
			Port:     22,
		}},
	}

	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}

	var data []byte
	if data, err = yaml.Marshal(template); err != nil {
		return
	}

	err = os.WriteFile(path, data, 0644)
	return
}
