//go:build darwin

package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ebitengine/purego"
)

func libraryPath() string {
	name := "libnatview.dylib"
	natviewPath := os.Getenv("NATVIEW_PATH")
	execPath, _ := os.Executable()
	dir := filepath.Dir(execPath)

	for _, v := range []string{natviewPath, dir, filepath.Join(dir, "..", "Frameworks")} {
		n := filepath.Join(v, name)
		if _, err := os.Stat(n); err == nil {
			return n
		}
	}
	return name
}

func loadLibrary(name string) (uintptr, error) {
	return purego.Dlopen(name, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
}

func loadSymbol(lib uintptr, name string) (uintptr, error) {
	ptr, err := purego.Dlsym(lib, name)
	if err != nil {
		return 0, fmt.Errorf("platform: failed to load symbol %s: %w", name, err)
	}
	return ptr, nil
}
