package listflags

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestSharedFlags(t *testing.T) {
	var pending, asJSON bool
	cmd := &cobra.Command{Use: "list"}
	AddPendingFlag(cmd, &pending)
	AddJSONFlag(cmd, &asJSON)

	if err := cmd.ParseFlags([]string{"--pending", "--json"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if !pending || !asJSON {
		t.Fatalf("expected both flags set, got pending=%v json=%v", pending, asJSON)
	}
}
