package oids

import (
	"strings"
	"testing"
)

func TestOIDsAreValidFormat(t *testing.T) {
	t.Parallel()

	oids := []struct {
		name string
		oid  string
	}{
		{"SysDescr", SysDescr},
		{"SysName", SysName},
		{"HrDeviceDescr", HrDeviceDescr},
		{"PrtGeneralSerialNumber", PrtGeneralSerialNumber},
	}

	for _, tc := range oids {
		if !strings.HasPrefix(tc.oid, "1.3.6.1.") {
			t.Errorf("%s = %q: should start with 1.3.6.1.", tc.name, tc.oid)
		}
		if strings.HasPrefix(tc.oid, ".") || strings.HasSuffix(tc.oid, ".") {
			t.Errorf("%s = %q: should not have leading or trailing dots", tc.name, tc.oid)
		}
		for _, part := range strings.Split(tc.oid, ".") {
			if part == "" {
				t.Errorf("%s = %q: empty arc", tc.name, tc.oid)
				break
			}
			for _, c := range part {
				if c < '0' || c > '9' {
					t.Errorf("%s = %q: non-numeric arc %q", tc.name, tc.oid, part)
					break
				}
			}
		}
	}
}

func TestIdentityOIDsUnique(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, oid := range Identity {
		if seen[oid] {
			t.Errorf("duplicate OID %s in Identity", oid)
		}
		seen[oid] = true
	}
	if len(Identity) != 4 {
		t.Errorf("Identity has %d OIDs, want 4", len(Identity))
	}
}
