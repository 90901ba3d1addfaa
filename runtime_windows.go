//go:build windows

package natview

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// webview2BootstrapperURL is Microsoft's evergreen WebView2 bootstrapper.
const webview2BootstrapperURL = "https://go.microsoft.com/fwlink/p/?LinkId=2124703"

// webview2ClientStateKeys mirrors where the WebView2 loader looks for an
// installed runtime (per-machine, then per-user).
var webview2ClientStateKeys = []struct {
	root registry.Key
	path string
}{
	{registry.LOCAL_MACHINE, `SOFTWARE\WOW6432Node\Microsoft\EdgeUpdate\Clients\{F3017226-FE2A-4295-8BDF-00C3A9A7E4C5}`},
	{registry.CURRENT_USER, `SOFTWARE\Microsoft\EdgeUpdate\Clients\{F3017226-FE2A-4295-8BDF-00C3A9A7E4C5}`},
}

func checkRuntimeImpl() RuntimeStatus {
	if v, ok := installedWebView2Version(); ok {
		return RuntimeStatus{Available: true, Version: v, Platform: "windows"}
	}
	return RuntimeStatus{Available: false, Platform: "windows"}
}

func installedWebView2Version() (string, bool) {
	for _, k := range webview2ClientStateKeys {
		key, err := registry.OpenKey(k.root, k.path, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		v, _, err := key.GetStringValue("pv")
		key.Close()
		if err == nil && v != "" && v != "0.0.0.0" {
			return v, true
		}
	}
	return "", false
}

// ensureRuntimeImpl downloads the official bootstrapper, verifies its
// Authenticode signature via WinVerifyTrust, and runs it silently. It
// never requests elevation itself — the bootstrapper triggers the
// standard UAC consent prompt only if it actually needs admin rights.
func ensureRuntimeImpl() (RuntimeStatus, error) {
	if status := checkRuntimeImpl(); status.Available {
		return status, nil
	}

	path, err := downloadBootstrapper()
	if err != nil {
		return RuntimeStatus{Platform: "windows"}, fmt.Errorf("natview: download webview2 bootstrapper: %w", err)
	}
	defer os.Remove(path)

	if err := verifyAuthenticodeSignature(path); err != nil {
		return RuntimeStatus{Platform: "windows"}, fmt.Errorf("%w: %w", ErrRuntimeUnavailable, err)
	}

	cmd := exec.Command(path, "/silent", "/install")
	if err := cmd.Run(); err != nil {
		return RuntimeStatus{Platform: "windows"}, fmt.Errorf("natview: run webview2 bootstrapper: %w", err)
	}

	return checkRuntimeImpl(), nil
}

func downloadBootstrapper() (string, error) {
	resp, err := http.Get(webview2BootstrapperURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	var nonce [8]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	path := filepath.Join(os.TempDir(), "MicrosoftEdgeWebview2Setup-"+hex.EncodeToString(nonce[:])+".exe")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// WinVerifyTrust action GUID for Authenticode ("WINTRUST_ACTION_GENERIC_VERIFY_V2").
var wintrustActionGenericVerifyV2 = windows.GUID{
	Data1: 0x00AAC56B, Data2: 0xCD44, Data3: 0x11D0,
	Data4: [8]byte{0x8C, 0xC2, 0x00, 0xC0, 0x4F, 0xC2, 0x95, 0xEE},
}

const (
	wtdUICone      = 2
	wtdRevokeWholeChain = 0
	wtdChoiceFile       = 1
	wtdStateActionVerify = 1
)

type wintrustFileInfo struct {
	cbStruct       uint32
	pcwszFilePath  *uint16
	hFile          windows.Handle
	pgKnownSubject *windows.GUID
}

type wintrustData struct {
	cbStruct            uint32
	pPolicyCallbackData uintptr
	pSIPClientData      uintptr
	uiChoice            uint32
	fdwRevocationChecks uint32
	unionChoice         uint32
	fileOrCatalogOrBlob uintptr
	stateAction         uint32
	hWVTStateData       windows.Handle
	urlReference        *uint16
	proFlags            uint32
	uiContext           uint32
}

// verifyAuthenticodeSignature calls WinVerifyTrust against path, the same
// check Windows Explorer performs before running a downloaded installer.
// A non-nil return means the signature is missing or invalid; the caller
// must not execute the file.
func verifyAuthenticodeSignature(path string) error {
	wintrust := windows.NewLazySystemDLL("wintrust.dll")
	proc := wintrust.NewProc("WinVerifyTrust")

	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}

	fileInfo := wintrustFileInfo{
		pcwszFilePath: pathPtr,
	}
	fileInfo.cbStruct = uint32(unsafe.Sizeof(fileInfo))

	data := wintrustData{
		uiChoice:            wtdUICone,
		fdwRevocationChecks: wtdRevokeWholeChain,
		unionChoice:         wtdChoiceFile,
		fileOrCatalogOrBlob: uintptr(unsafe.Pointer(&fileInfo)),
		stateAction:         wtdStateActionVerify,
	}
	data.cbStruct = uint32(unsafe.Sizeof(data))

	ret, _, _ := proc.Call(
		uintptr(0xFFFFFFFF), // INVALID_HANDLE_VALUE, "no UI window"
		uintptr(unsafe.Pointer(&wintrustActionGenericVerifyV2)),
		uintptr(unsafe.Pointer(&data)),
	)
	if ret != 0 {
		return fmt.Errorf("WinVerifyTrust rejected signature (0x%x)", uint32(ret))
	}
	return nil
}
