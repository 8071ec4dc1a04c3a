package website

import (
	"fmt"
	"sort"
	"strings"
)

// Color palette for the dark night-sky theme.
var Colors = map[string]string{
	// Backgrounds
	"bg":      "#030213", // Page top
	"bgEnd":   "#07103A", // Page bottom
	"bgAlt":   "#0F172A", // Cards
	"bgInput": "#111A33", // Form controls

	// Text
	"text":      "#F8FAFC",
	"textMuted": "#CBD5E1",
	"textDim":   "#64748B",

	// Brand
	"primary": "#FBBF24", // Amber
	"accent":  "#F43F5E", // Rose

	// Status
	"success": "#86EFAC",
	"danger":  "#FB7185",

	// Borders
	"border":      "#1E293B",
	"borderLight": "#334155",
}

// FontFamily is the system font stack.
var FontFamily = `system-ui, -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif`

// StyleOption allows customizing the generated CSS
type StyleOption func(*styleConfig)

type styleConfig struct {
	customColors      map[string]string
	includeReset      bool
	includeAnimations bool
}

// WithCustomColors overrides default colors
func WithCustomColors(colors map[string]string) StyleOption {
	return func(cfg *styleConfig) {
		for k, v := range colors {
			cfg.customColors[k] = v
		}
	}
}

// WithReset includes a CSS reset
func WithReset(include bool) StyleOption {
	return func(cfg *styleConfig) {
		cfg.includeReset = include
	}
}

// WithAnimations includes animation definitions
func WithAnimations(include bool) StyleOption {
	return func(cfg *styleConfig) {
		cfg.includeAnimations = include
	}
}

// RenderStyles generates the complete CSS for the page.
func RenderStyles(opts ...StyleOption) string {
	cfg := &styleConfig{
		customColors:      make(map[string]string),
		includeReset:      true,
		includeAnimations: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	colors := make(map[string]string)
	for k, v := range Colors {
		colors[k] = v
	}
	for k, v := range cfg.customColors {
		colors[k] = v
	}

	var sb strings.Builder

	if cfg.includeReset {
		sb.WriteString(cssReset())
	}
	sb.WriteString(cssVariables(colors))
	sb.WriteString(cssBase())
	sb.WriteString(cssLayout())
	sb.WriteString(cssHeader())
	sb.WriteString(cssButtons())
	sb.WriteString(cssCards())
	sb.WriteString(cssForms())
	if cfg.includeAnimations {
		sb.WriteString(cssAnimations())
	}
	sb.WriteString(cssAccessibility())
	sb.WriteString(cssResponsive())

	return sb.String()
}

func cssReset() string {
	return `
*,*::before,*::after{box-sizing:border-box;margin:0;padding:0}
html{-webkit-text-size-adjust:100%;scroll-behavior:smooth}
body{line-height:1.6;-webkit-font-smoothing:antialiased}
img,iframe{display:block;max-width:100%}
input,button,textarea{font:inherit}
a{color:inherit;text-decoration:none}
ul{list-style:none}
`
}

// cssVariables emits variables in name order so the stylesheet is stable.
func cssVariables(colors map[string]string) string {
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)

	vars := make([]string, 0, len(names))
	for _, name := range names {
		vars = append(vars, fmt.Sprintf("--color-%s:%s", name, colors[name]))
	}
	return fmt.Sprintf(`:root{%s;--font-sans:%s}`, strings.Join(vars, ";"), FontFamily)
}

func cssBase() string {
	return `
body{font-family:var(--font-sans);background:linear-gradient(to bottom,var(--color-bg),var(--color-bgEnd));color:var(--color-text);min-height:100vh}
h1{font-size:1.25rem;font-weight:700}
h2{font-size:clamp(2.25rem,6vw,3rem);font-weight:800;text-shadow:0 4px 12px rgba(0,0,0,0.6)}
h3{font-size:1.5rem;font-weight:700}
h4{font-size:1.125rem;font-weight:700}
p,.muted{color:var(--color-textMuted)}
.small{font-size:0.875rem}
`
}

func cssLayout() string {
	return `
.container{width:100%;max-width:1200px;margin:0 auto;padding:0 1.5rem}
.section{padding:2rem 0}
.flex{display:flex}.flex-wrap{flex-wrap:wrap}.items-center{align-items:center}.justify-between{justify-content:space-between}
.gap-sm{gap:0.5rem}.gap-md{gap:0.75rem}.gap-lg{gap:1.5rem}
.mt-sm{margin-top:0.5rem}.mt-md{margin-top:1rem}.mt-lg{margin-top:1.5rem}
.stack>*+*{margin-top:0.75rem}
.grid{display:grid;gap:1.5rem;grid-template-columns:1fr}
.text-center{text-align:center}
.steps{list-style:decimal inside;color:var(--color-textMuted)}
`
}

func cssHeader() string {
	return `
.site-header{padding:1.5rem 0}
.logo-mark{width:3rem;height:3rem;border-radius:9999px;background:linear-gradient(135deg,var(--color-primary),var(--color-accent));display:flex;align-items:center;justify-content:center;box-shadow:0 10px 20px rgba(0,0,0,0.4)}
.nav-links{display:none;gap:1rem}
.nav-links a:hover{text-decoration:underline}
.hero-banner{position:relative;overflow:hidden;border-radius:1rem;height:18rem;background:radial-gradient(circle at 30% 20%,#1D2A6B,#030213 70%);box-shadow:0 25px 50px rgba(0,0,0,0.5);display:flex;align-items:center;justify-content:center}
.hero-banner p{color:#E2E8F0;font-size:1.25rem}
.venue-map{overflow:hidden;border-radius:0.75rem;box-shadow:0 10px 25px rgba(0,0,0,0.4)}
.venue-map iframe{border:0;width:100%;height:360px}
.site-footer{padding:2.5rem 0}
.footnote{margin-top:2rem;text-align:center;color:var(--color-textDim)}
`
}

func cssButtons() string {
	return `
.btn{display:inline-flex;align-items:center;justify-content:center;padding:0.6rem 1.1rem;font-size:0.95rem;font-weight:600;border-radius:0.5rem;border:1px solid transparent;cursor:pointer;transition:all 0.2s ease;min-height:2.5rem}
.btn:disabled{opacity:0.6;cursor:not-allowed}
.btn-default{background:var(--color-primary);color:#030213}
.btn-default:hover:not(:disabled){filter:brightness(1.1)}
.btn-outline{background:transparent;color:var(--color-text);border-color:var(--color-borderLight)}
.btn-outline:hover:not(:disabled){background:var(--color-bgAlt)}
.btn-ghost{background:transparent;color:var(--color-textMuted)}
.btn-ghost:hover:not(:disabled){color:var(--color-text);background:rgba(255,255,255,0.05)}
.badge{display:inline-flex;align-items:center;padding:0.25rem 0.75rem;border-radius:9999px;font-size:0.8rem;font-weight:600;background:rgba(251,191,36,0.15);color:var(--color-primary);border:1px solid rgba(251,191,36,0.4)}
`
}

func cssCards() string {
	return `
.card{background:var(--color-bgAlt);border-radius:0.75rem;border:1px solid var(--color-border);overflow:hidden}
.card+.card{margin-top:1rem}
.card-header{padding:1.25rem 1.25rem 0}
.card-title{font-size:1.1rem;font-weight:600}
.card-content{padding:1.25rem}
.check-list li{display:flex;gap:0.75rem;align-items:flex-start}
.check-list li::before{content:"✓";color:var(--color-success)}
.quick-links li+li,.check-list li+li{margin-top:0.5rem}
.success{color:var(--color-success);font-weight:600}
.failure{color:var(--color-danger);font-weight:600}
`
}

func cssForms() string {
	return `
.reg-form{background:rgba(15,23,42,0.4);padding:1.5rem;border-radius:0.75rem}
.label{display:block;font-size:0.875rem;font-weight:500;margin-bottom:0.35rem}
.input{width:100%;padding:0.55rem 0.75rem;border-radius:0.5rem;border:1px solid var(--color-borderLight);background:var(--color-bgInput);color:var(--color-text)}
.input:focus{outline:2px solid var(--color-primary);outline-offset:1px}
.input[aria-invalid="true"]{border-color:var(--color-danger)}
.input:disabled{opacity:0.6}
.textarea{resize:vertical}
.field-error{color:var(--color-danger);font-size:0.875rem;margin-top:0.25rem}
.field-error:empty{display:none}
.checkbox{width:1rem;height:1rem;accent-color:var(--color-primary)}
`
}

func cssAnimations() string {
	return `
@keyframes fadeIn{from{opacity:0;transform:translateY(12px)}to{opacity:1;transform:translateY(0)}}
@keyframes pulse{0%,100%{opacity:1}50%{opacity:0.5}}
.animate-fade-in{animation:fadeIn 0.5s ease forwards}
.btn[aria-busy="true"]{animation:pulse 1.2s infinite}
@media(prefers-reduced-motion:reduce){*{animation-duration:0.01ms!important;animation-iteration-count:1!important;transition-duration:0.01ms!important}}
`
}

func cssAccessibility() string {
	return `
.sr-only{position:absolute;width:1px;height:1px;padding:0;margin:-1px;overflow:hidden;clip:rect(0,0,0,0);white-space:nowrap;border:0}
.skip-link{position:absolute;top:-40px;left:0;background:var(--color-primary);color:#030213;padding:0.5rem 1rem;z-index:1000;font-weight:600}
.skip-link:focus{top:0}
:focus-visible{outline:2px solid var(--color-primary);outline-offset:2px}
`
}

func cssResponsive() string {
	return `
@media(min-width:768px){
.nav-links{display:flex}
.grid-2{grid-template-columns:repeat(2,1fr)}
.grid-3{grid-template-columns:repeat(3,1fr)}
.hero-banner{height:18rem}
}
`
}
