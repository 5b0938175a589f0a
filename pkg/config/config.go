// Package config implements the declarative configuration applier
// described in spec §4.8: decode a VLAN/interface/ACL/VRF definition,
// validate it, and turn it into PortMap/VlanMap/InterfaceMap/AclMap
// entries plus the connected and link-local routes those interfaces imply.
package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config is the declarative switch configuration, decoded from YAML.
type Config struct {
	AlpmEnabled bool              `yaml:"alpmEnabled"`
	Ports       []PortConfig      `yaml:"ports"`
	Vlans       []VlanConfig      `yaml:"vlans"`
	Interfaces  []InterfaceConfig `yaml:"interfaces"`
	Acls        []AclConfig       `yaml:"acls"`
}

// PortConfig describes one physical port.
type PortConfig struct {
	ID      uint32 `yaml:"id"`
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
	VlanID  uint16 `yaml:"vlanId"`
}

// VlanConfig describes one broadcast domain.
type VlanConfig struct {
	ID      uint16   `yaml:"id"`
	Name    string   `yaml:"name"`
	Members []uint32 `yaml:"members"`
}

// InterfaceConfig describes one routed (layer-3) interface.
type InterfaceConfig struct {
	ID        uint32   `yaml:"id"`
	Name      string   `yaml:"name"`
	VlanID    uint16   `yaml:"vlanId"`
	RouterID  uint32   `yaml:"routerId"`
	MAC       string   `yaml:"mac"`
	Addresses []string `yaml:"addresses"`
}

// AclConfig describes one named access control list.
type AclConfig struct {
	ID    uint32          `yaml:"id"`
	Name  string          `yaml:"name"`
	Rules []AclRuleConfig `yaml:"rules"`
}

// AclRuleConfig is a single match/action pair within an Acl.
type AclRuleConfig struct {
	Priority int    `yaml:"priority"`
	Match    string `yaml:"match"`
	Action   string `yaml:"action"`
}

// Load decodes a Config from r.
func Load(r io.Reader) (Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decoding config: %v", ErrInvalidInput, err)
	}
	return cfg, nil
}
