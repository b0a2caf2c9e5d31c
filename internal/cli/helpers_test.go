package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ppiankov/downsweep/internal/config"
)

func dirFlagCmd(t *testing.T, value string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	var dir string
	cmd.Flags().StringVar(&dir, "dir", "", "")
	if value != "" {
		if err := cmd.Flags().Set("dir", value); err != nil {
			t.Fatal(err)
		}
	}
	return cmd
}

func TestResolveDirFlagWins(t *testing.T) {
	flagDir := t.TempDir()
	cfg := config.Default()
	cfg.Dir = t.TempDir()

	got, err := resolveDir(dirFlagCmd(t, flagDir), flagDir, cfg)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.Abs(flagDir)
	if got != want {
		t.Errorf("got %s, want flag value %s", got, want)
	}
}

func TestResolveDirConfigFallback(t *testing.T) {
	cfgDir := t.TempDir()
	cfg := config.Default()
	cfg.Dir = cfgDir

	got, err := resolveDir(dirFlagCmd(t, ""), "", cfg)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.Abs(cfgDir)
	if got != want {
		t.Errorf("got %s, want config value %s", got, want)
	}
}

func TestResolveDirMissingIsFatal(t *testing.T) {
	cfg := config.Default()
	cfg.Dir = filepath.Join(t.TempDir(), "does-not-exist")

	if _, err := resolveDir(dirFlagCmd(t, ""), "", cfg); err == nil {
		t.Error("expected error for missing target directory")
	}
}

func TestResolveDirRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()

	if _, err := resolveDir(dirFlagCmd(t, file), file, cfg); err == nil {
		t.Error("expected error for non-directory target")
	}
}

func TestBuildOrganizer(t *testing.T) {
	root := t.TempDir()
	org, err := buildOrganizer(config.Default(), root, nil)
	if err != nil {
		t.Fatalf("build organizer: %v", err)
	}
	if org.Root() != root {
		t.Errorf("root = %s, want %s", org.Root(), root)
	}
	if filepath.Base(org.LogPath()) != ".downsweep.log" {
		t.Errorf("log path = %s", org.LogPath())
	}
}

func TestRecorderOrNil(t *testing.T) {
	if recorderOrNil(nil) != nil {
		t.Error("nil store must yield a nil interface")
	}
}
