package testsupport

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/CrocodileWoodGordon/todolist/internal/kv"
	"github.com/CrocodileWoodGordon/todolist/todo"
	"github.com/rogpeppe/go-internal/testscript"
)

var (
	buildOnce    sync.Once
	todolistPath string
	buildErr     error
)

// BuildTodolist builds the todolist binary once and returns its path.
func BuildTodolist(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "todolist-bin-")
		if err != nil {
			buildErr = err
			return
		}

		todolistPath = filepath.Join(binDir, "todolist")
		cmd := exec.Command("go", "build", "-o", todolistPath, "./cmd/todolist")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build todolist: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return todolistPath
}

// SetupScriptEnv configures common environment variables for testscript.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("TODOLIST", BuildTodolist(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	if err := EnsureHomeDirs(homeDir); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("STORE", filepath.Join(homeDir, ".local", "share", "todolist", "store.json"))
	return nil
}

// Commands returns the custom testscript commands.
func Commands() map[string]func(ts *testscript.TestScript, neg bool, args []string) {
	return map[string]func(ts *testscript.TestScript, neg bool, args []string){
		"envset":    CmdEnvSet,
		"itemcount": CmdItemCount,
		"storehas":  CmdStoreHas,
	}
}

// CmdEnvSet stores the trimmed contents of a file in an env var.
func CmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("envset does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset VAR FILE")
	}

	value := strings.TrimSpace(ts.ReadFile(args[1]))
	ts.Setenv(args[0], value)
}

// CmdItemCount asserts how many items the file store at $STORE holds.
func CmdItemCount(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("itemcount does not support negation")
	}
	if len(args) != 1 {
		ts.Fatalf("usage: itemcount N")
	}
	want, err := strconv.Atoi(args[0])
	if err != nil {
		ts.Fatalf("itemcount: %v", err)
	}

	store := todo.Open(kv.NewFile(ts.Getenv("STORE")), todo.Options{})
	if got := store.Len(); got != want {
		ts.Fatalf("expected %d items in %s, got %d", want, ts.Getenv("STORE"), got)
	}
}

// CmdStoreHas asserts that the raw list persisted at $STORE matches a regexp.
func CmdStoreHas(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) != 1 {
		ts.Fatalf("usage: storehas REGEXP")
	}
	re, err := regexp.Compile(args[0])
	if err != nil {
		ts.Fatalf("storehas: %v", err)
	}

	raw, ok, err := kv.NewFile(ts.Getenv("STORE")).Get(todo.DefaultKey)
	if err != nil {
		ts.Fatalf("storehas: %v", err)
	}
	matched := ok && re.MatchString(raw)
	if matched && neg {
		ts.Fatalf("stored list unexpectedly matches %q: %s", args[0], raw)
	}
	if !matched && !neg {
		ts.Fatalf("stored list does not match %q: %s", args[0], raw)
	}
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
