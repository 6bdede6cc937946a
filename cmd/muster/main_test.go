package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command error: %v", err)
	}
	if !strings.Contains(out.String(), "muster dev") {
		t.Errorf("version output = %q, want muster dev", out.String())
	}
}

func TestRootRegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"db", "list", "fighter", "equip", "content", "recalc", "sweep", "serve"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub == cmd {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestConnectFromConfigMissingFile(t *testing.T) {
	if _, _, err := connectFromConfig("/nonexistent/muster.yaml"); err == nil {
		t.Error("connectFromConfig() with missing file succeeded")
	}
}
