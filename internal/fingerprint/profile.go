// internal/fingerprint/profile.go
package fingerprint

import "fmt"

// OS identifies the operating system a profile impersonates.
type OS int

const (
	// Windows 10/11 64-bit.
	Windows OS = iota
	// MacOSIntel is macOS on Intel hardware.
	MacOSIntel
	// MacOSArm is macOS on Apple Silicon.
	MacOSArm
	// Linux x86_64.
	Linux
)

// Platform returns the navigator.platform value for this OS.
func (o OS) Platform() string {
	switch o {
	case Windows:
		return "Win32"
	case MacOSIntel, MacOSArm:
		return "MacIntel"
	default:
		return "Linux x86_64"
	}
}

// HintsPlatform returns the client hints platform name for this OS.
func (o OS) HintsPlatform() string {
	switch o {
	case Windows:
		return "Windows"
	case MacOSIntel, MacOSArm:
		return "macOS"
	default:
		return "Linux"
	}
}

func (o OS) String() string {
	switch o {
	case Windows:
		return "Windows"
	case MacOSIntel:
		return "macOS (Intel)"
	case MacOSArm:
		return "macOS (ARM)"
	default:
		return "Linux"
	}
}

// ParseOS maps a configuration name to an OS preset.
func ParseOS(name string) (OS, error) {
	switch name {
	case "windows":
		return Windows, nil
	case "macos-intel":
		return MacOSIntel, nil
	case "macos-arm":
		return MacOSArm, nil
	case "linux":
		return Linux, nil
	default:
		return Linux, fmt.Errorf("unknown os %q (want windows, macos-intel, macos-arm or linux)", name)
	}
}

// GPU is a preset for WebGL vendor/renderer spoofing. The strings mirror what
// real Chrome reports through ANGLE for the given card.
type GPU int

const (
	NvidiaRTX3080 GPU = iota
	NvidiaRTX4080
	NvidiaGTX1660
	IntelUHD630
	IntelIrisXe
	AppleM1Pro
	AppleM2Max
	AppleM4Max
	AmdRadeonRX6800
)

// Vendor returns the WebGL vendor string.
func (g GPU) Vendor() string {
	switch g {
	case NvidiaRTX3080, NvidiaRTX4080, NvidiaGTX1660:
		return "Google Inc. (NVIDIA)"
	case IntelUHD630, IntelIrisXe:
		return "Google Inc. (Intel)"
	case AppleM1Pro, AppleM2Max, AppleM4Max:
		return "Google Inc. (Apple)"
	default:
		return "Google Inc. (AMD)"
	}
}

// Renderer returns the WebGL renderer string.
func (g GPU) Renderer() string {
	switch g {
	case NvidiaRTX3080:
		return "ANGLE (NVIDIA, NVIDIA GeForce RTX 3080 Direct3D11 vs_5_0 ps_5_0)"
	case NvidiaRTX4080:
		return "ANGLE (NVIDIA, NVIDIA GeForce RTX 4080 Direct3D11 vs_5_0 ps_5_0)"
	case NvidiaGTX1660:
		return "ANGLE (NVIDIA, NVIDIA GeForce GTX 1660 SUPER Direct3D11 vs_5_0 ps_5_0)"
	case IntelUHD630:
		return "ANGLE (Intel, Intel(R) UHD Graphics 630 Direct3D11 vs_5_0 ps_5_0)"
	case IntelIrisXe:
		return "ANGLE (Intel, Intel(R) Iris(R) Xe Graphics Direct3D11 vs_5_0 ps_5_0)"
	case AppleM1Pro:
		return "ANGLE (Apple, Apple M1 Pro, OpenGL 4.1)"
	case AppleM2Max:
		return "ANGLE (Apple, Apple M2 Max, OpenGL 4.1)"
	case AppleM4Max:
		return "ANGLE (Apple, ANGLE Metal Renderer: Apple M4 Max, Unspecified Version)"
	default:
		return "ANGLE (AMD, AMD Radeon RX 6800 XT Direct3D11 vs_5_0 ps_5_0)"
	}
}

// ParseGPU maps a configuration name to a GPU preset.
func ParseGPU(name string) (GPU, error) {
	switch name {
	case "nvidia-rtx-3080":
		return NvidiaRTX3080, nil
	case "nvidia-rtx-4080":
		return NvidiaRTX4080, nil
	case "nvidia-gtx-1660":
		return NvidiaGTX1660, nil
	case "intel-uhd-630":
		return IntelUHD630, nil
	case "intel-iris-xe":
		return IntelIrisXe, nil
	case "apple-m1-pro":
		return AppleM1Pro, nil
	case "apple-m2-max":
		return AppleM2Max, nil
	case "apple-m4-max":
		return AppleM4Max, nil
	case "amd-radeon-rx-6800":
		return AmdRadeonRX6800, nil
	default:
		return NvidiaGTX1660, fmt.Errorf("unknown gpu %q", name)
	}
}

// Profile is a frozen, internally consistent synthetic hardware and software
// identity. Every derived string (user agent, client hints platform, WebGL
// vendor/renderer) is a pure function of its fields; derivations live only
// here so a field can never drift apart from its derived values.
type Profile struct {
	os            OS
	chromeVersion int
	gpu           GPU
	memoryGB      int
	cpuCores      int
	locale        string
	timezone      string
	screenWidth   int
	screenHeight  int
}

// Builder accumulates overrides on top of an OS preset and produces a frozen
// Profile.
type Builder struct {
	p Profile
}

// New starts a builder for the given OS. Each preset seeds a plausible
// default GPU, memory and core combination.
func New(os OS) *Builder {
	gpu := NvidiaRTX3080
	switch os {
	case MacOSIntel:
		gpu = AppleM1Pro
	case MacOSArm:
		gpu = AppleM4Max
	case Linux:
		gpu = NvidiaGTX1660
	}
	return &Builder{p: Profile{
		os:            os,
		chromeVersion: 129,
		gpu:           gpu,
		memoryGB:      8,
		cpuCores:      8,
		locale:        "en-US",
		timezone:      "America/New_York",
		screenWidth:   1920,
		screenHeight:  1080,
	}}
}

// NewWindows starts a Windows profile (RTX 3080, 8 cores).
func NewWindows() *Builder { return New(Windows) }

// NewMacOSIntel starts a macOS Intel profile.
func NewMacOSIntel() *Builder { return New(MacOSIntel) }

// NewMacOSArm starts a macOS Apple Silicon profile.
func NewMacOSArm() *Builder { return New(MacOSArm) }

// NewLinux starts a Linux profile.
func NewLinux() *Builder { return New(Linux) }

// ChromeVersion overrides the major Chrome version (default 129).
func (b *Builder) ChromeVersion(v int) *Builder {
	b.p.chromeVersion = v
	return b
}

// GPU overrides the GPU preset.
func (b *Builder) GPU(g GPU) *Builder {
	b.p.gpu = g
	return b
}

// MemoryGB overrides the reported device memory (default 8).
func (b *Builder) MemoryGB(gb int) *Builder {
	b.p.memoryGB = gb
	return b
}

// CPUCores overrides the reported logical core count (default 8).
func (b *Builder) CPUCores(cores int) *Builder {
	b.p.cpuCores = cores
	return b
}

// Locale overrides the locale, e.g. "de-DE".
func (b *Builder) Locale(locale string) *Builder {
	b.p.locale = locale
	return b
}

// Timezone overrides the timezone, e.g. "Europe/Berlin".
func (b *Builder) Timezone(tz string) *Builder {
	b.p.timezone = tz
	return b
}

// Screen overrides the reported screen resolution.
func (b *Builder) Screen(width, height int) *Builder {
	b.p.screenWidth = width
	b.p.screenHeight = height
	return b
}

// Build freezes the profile.
func (b *Builder) Build() Profile {
	return b.p
}

func (p Profile) OS() OS             { return p.os }
func (p Profile) ChromeVersion() int { return p.chromeVersion }
func (p Profile) GPU() GPU           { return p.gpu }
func (p Profile) MemoryGB() int      { return p.memoryGB }
func (p Profile) CPUCores() int      { return p.cpuCores }
func (p Profile) Locale() string     { return p.locale }
func (p Profile) Timezone() string   { return p.timezone }
func (p Profile) ScreenWidth() int   { return p.screenWidth }
func (p Profile) ScreenHeight() int  { return p.screenHeight }

// Platform returns the navigator.platform string for this profile.
func (p Profile) Platform() string { return p.os.Platform() }

// HintsPlatform returns the client hints platform string for this profile.
func (p Profile) HintsPlatform() string { return p.os.HintsPlatform() }

// Vendor returns the spoofed WebGL vendor string.
func (p Profile) Vendor() string { return p.gpu.Vendor() }

// Renderer returns the spoofed WebGL renderer string.
func (p Profile) Renderer() string { return p.gpu.Renderer() }

// UserAgent derives the full User-Agent string for this profile.
func (p Profile) UserAgent() string {
	var osPart string
	switch p.os {
	case Windows:
		osPart = "Windows NT 10.0; Win64; x64"
	case MacOSIntel, MacOSArm:
		osPart = "Macintosh; Intel Mac OS X 10_15_7"
	default:
		osPart = "X11; Linux x86_64"
	}
	return fmt.Sprintf(
		"Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.0.0 Safari/537.36",
		osPart, p.chromeVersion,
	)
}

func (p Profile) String() string {
	return fmt.Sprintf("Profile(%s, Chrome %d, %s)", p.os, p.chromeVersion, p.gpu.Renderer())
}
