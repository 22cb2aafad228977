package config

//go:generate go tool go-enum --marshal --names

// PDF rendering engine.
// ENUM(chrome, weasyprint, cdp)
type Engine int

// Chrome family engines share executable resolution.
func (e Engine) UsesChrome() bool {
	return e == EngineChrome || e == EngineCdp
}

// Selects continuous (web) or paginated (print) output.
// ENUM(auto, on, off)
type WebMode int

// How continuous web output is split into files.
// ENUM(none, category, type)
type WebSplit int

// Snapshot cache behavior for fetched payloads.
// ENUM(off, record, replay)
type CacheMode int
