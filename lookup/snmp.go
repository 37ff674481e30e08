package lookup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aplejeune/TSTC/common/snmp/oids"
	"github.com/gosnmp/gosnmp"
)

// DeviceIdentity is what the printer reports about itself over SNMP
type DeviceIdentity struct {
	SysName  string `json:"sys_name,omitempty"`
	SysDescr string `json:"sys_descr,omitempty"`
	Model    string `json:"model,omitempty"`
	Serial   string `json:"serial,omitempty"`
}

// String renders the identity as "name (model) S/N serial"
func (d *DeviceIdentity) String() string {
	model := d.Model
	if model == "" {
		model = d.SysDescr
	}
	var s string
	switch {
	case d.SysName != "" && model != "":
		s = fmt.Sprintf("%s (%s)", d.SysName, model)
	case d.SysName != "":
		s = d.SysName
	default:
		s = model
	}
	if d.Serial != "" {
		s = strings.TrimSpace(s + " S/N " + d.Serial)
	}
	return s
}

// IdentityProber fetches a device's identity from its network address
type IdentityProber interface {
	Probe(ctx context.Context, address string) (*DeviceIdentity, error)
}

// SNMPConfig holds SNMP client settings
type SNMPConfig struct {
	Community string
	Version   gosnmp.SnmpVersion
	Port      uint16
	Timeout   time.Duration
	Retries   int
}

// SNMPClient defines the subset of SNMP operations the prober needs.
type SNMPClient interface {
	Get(targets []string) (*gosnmp.SnmpPacket, error)
	Close() error
}

// gosnmpClient wraps gosnmp.GoSNMP to implement SNMPClient.
type gosnmpClient struct {
	conn *gosnmp.GoSNMP
}

func (c *gosnmpClient) Get(targets []string) (*gosnmp.SnmpPacket, error) {
	return c.conn.Get(targets)
}

func (c *gosnmpClient) Close() error {
	return c.conn.Conn.Close()
}

// newSNMPClient connects a gosnmp client to target.
func newSNMPClient(ctx context.Context, cfg SNMPConfig, target string) (SNMPClient, error) {
	if target == "" {
		return nil, fmt.Errorf("target IP required")
	}

	port := cfg.Port
	if port == 0 {
		port = 161
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	conn := &gosnmp.GoSNMP{
		Context:   ctx,
		Target:    target,
		Port:      port,
		Community: cfg.Community,
		Version:   cfg.Version,
		Timeout:   timeout,
		Retries:   cfg.Retries,
	}
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	return &gosnmpClient{conn: conn}, nil
}

// snmpProber reads the oids.Identity objects with a single GET
type snmpProber struct {
	cfg       SNMPConfig
	newClient func(ctx context.Context, cfg SNMPConfig, target string) (SNMPClient, error)
}

// NewSNMPProber returns an IdentityProber backed by SNMP. An empty community
// defaults to "public".
func NewSNMPProber(cfg SNMPConfig) IdentityProber {
	if cfg.Community == "" {
		cfg.Community = "public"
	}
	return &snmpProber{cfg: cfg, newClient: newSNMPClient}
}

func (p *snmpProber) Probe(ctx context.Context, address string) (*DeviceIdentity, error) {
	client, err := p.newClient(ctx, p.cfg, address)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	packet, err := getIdentity(client, address)
	if err != nil {
		return nil, err
	}

	id := &DeviceIdentity{}
	for _, pdu := range packet.Variables {
		value := pduString(pdu)
		switch strings.TrimPrefix(pdu.Name, ".") {
		case oids.SysName:
			id.SysName = value
		case oids.SysDescr:
			id.SysDescr = value
		case oids.HrDeviceDescr:
			id.Model = value
		case oids.PrtGeneralSerialNumber:
			id.Serial = value
		}
	}
	if *id == (DeviceIdentity{}) {
		return nil, fmt.Errorf("snmp %s: no identity objects returned", address)
	}
	return id, nil
}

// getIdentity GETs oids.Identity. An SNMPv1 agent answers a request naming
// any unknown object with noSuchName for the whole PDU, so the offending
// object is dropped and the request repeated with the rest.
func getIdentity(client SNMPClient, address string) (*gosnmp.SnmpPacket, error) {
	targets := append([]string(nil), oids.Identity...)
	for len(targets) > 0 {
		packet, err := client.Get(targets)
		if err != nil {
			return nil, fmt.Errorf("snmp get %s: %w", address, err)
		}
		switch {
		case packet.Error == gosnmp.NoError:
			return packet, nil
		case packet.Error == gosnmp.NoSuchName && packet.ErrorIndex >= 1 && int(packet.ErrorIndex) <= len(targets):
			i := int(packet.ErrorIndex) - 1
			targets = append(targets[:i], targets[i+1:]...)
		default:
			return nil, fmt.Errorf("snmp get %s: agent error %v at index %d", address, packet.Error, packet.ErrorIndex)
		}
	}
	return nil, fmt.Errorf("snmp %s: no identity objects returned", address)
}

// ParseSNMPVersion converts "1" or "2c" to a gosnmp version. Empty means 2c.
func ParseSNMPVersion(s string) (gosnmp.SnmpVersion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "2c", "2":
		return gosnmp.Version2c, nil
	case "1":
		return gosnmp.Version1, nil
	default:
		return 0, fmt.Errorf("unsupported SNMP version: %s", s)
	}
}

func pduString(pdu gosnmp.SnmpPDU) string {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return ""
	}
	switch v := pdu.Value.(type) {
	case []byte:
		return strings.TrimSpace(string(v))
	case string:
		return strings.TrimSpace(v)
	default:
		return ""
	}
}
