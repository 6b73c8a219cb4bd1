package e2e

import (
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abelbrown/dishtip/internal/mockbackend"
)

// buildDishTip builds the dishtip binary into a temp dir.
func buildDishTip(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "dishtip")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	// test/e2e -> module root
	rootDir := filepath.Join(wd, "..", "..")

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/dishtip")
	cmd.Dir = rootDir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}
	return binPath
}

// startBackend serves the built-in fixtures and returns the server.
func startBackend(t *testing.T) (*mockbackend.Server, string) {
	t.Helper()
	mock := mockbackend.New(mockbackend.DefaultFixtures(), nil)
	srv := httptest.NewServer(mock)
	t.Cleanup(srv.Close)
	return mock, srv.URL
}

// isolatedEnv points the binary at backendURL with autocomplete off and all
// state under homeDir.
func isolatedEnv(homeDir, backendURL string) []string {
	env := []string{}
	for _, kv := range os.Environ() {
		if hasAnyPrefix(kv, "DISHTIP_", "GOOGLE_API_KEY=", "VITE_", "HOME=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env,
		"HOME="+homeDir,
		"DISHTIP_BACKEND_URL="+backendURL,
		"DISHTIP_LOG_DIR="+filepath.Join(homeDir, "logs"),
	)
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
