package postgres

import (
	"database/sql"
	"testing"
)

func TestConfigPoolLimits(t *testing.T) {
	cases := []struct {
		name               string
		cfg                Config
		wantOpen, wantIdle int
	}{
		{"defaults", Config{}, 10, 2},
		{"explicit", Config{MaxConns: 20, MinConns: 5}, 20, 5},
		{"idle capped by open", Config{MaxConns: 3, MinConns: 8}, 3, 3},
		{"small pool keeps default idle under cap", Config{MaxConns: 1}, 1, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			open, idle := c.cfg.poolLimits()
			if open != c.wantOpen || idle != c.wantIdle {
				t.Errorf("poolLimits() = %d, %d; want %d, %d", open, idle, c.wantOpen, c.wantIdle)
			}
		})
	}
}

func TestPoolUsage(t *testing.T) {
	usage, ok := poolUsage(sql.DBStats{MaxOpenConnections: 10, OpenConnections: 8, InUse: 4, Idle: 4})
	if !ok || usage != 40 {
		t.Errorf("poolUsage = %v, %v; want 40, true", usage, ok)
	}

	if _, ok := poolUsage(sql.DBStats{OpenConnections: 3, InUse: 3}); ok {
		t.Error("unlimited pool has no usage percentage")
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Error("empty config must be disabled")
	}
	if !(Config{URL: "postgres://localhost/finecheck"}).Enabled() {
		t.Error("config with url must be enabled")
	}
}
