/*
pbrforge builds a PBR material from a folder of textures: it matches texture
roles by file name, assembles the material asset, optionally bakes smoothness
into the alpha channel of the gloss map and fixes the texture import settings.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spaghettifunk/pbrforge/engine"
	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/math"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
	"github.com/spaghettifunk/pbrforge/engine/systems"
)

type options struct {
	project       string
	config        string
	prefs         string
	logLevel      string
	mode          string
	pack          bool
	noPack        bool
	prefix        string
	suffix        string
	name          string
	emission      string
	emissionColor string
	gi            string
	recursive     bool
	dryRun        bool
	watch         bool
	slots         map[metadata.TextureRole]*string
	visited       map[string]bool
}

func parseFlags(args []string) (*options, []string, error) {
	fs := flag.NewFlagSet("pbrforge", flag.ContinueOnError)
	o := &options{slots: make(map[metadata.TextureRole]*string)}

	fs.StringVar(&o.project, "project", ".", "project root containing the asset root")
	fs.StringVar(&o.config, "config", "", "project config file (default <project>/"+core.ConfigFileName+")")
	fs.StringVar(&o.prefs, "prefs", "", "preferences file (default in the user config dir)")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&o.mode, "mode", "", "preferred workflow when both maps exist: metallic or specular")
	fs.BoolVar(&o.pack, "pack", false, "pack smoothness into the alpha channel of the gloss map")
	fs.BoolVar(&o.noPack, "no-pack", false, "disable smoothness packing even if the config enables it")
	fs.StringVar(&o.prefix, "prefix", "", "material name prefix, persisted (default "+metadata.DefaultMaterialPrefix+")")
	fs.StringVar(&o.suffix, "suffix", "", "material name suffix, persisted")
	fs.StringVar(&o.name, "name", "", "material name override")
	fs.StringVar(&o.emission, "emission", "auto", "auto, on or off")
	fs.StringVar(&o.emissionColor, "emission-color", "", "emission colour as r,g,b[,a]")
	fs.StringVar(&o.gi, "gi", "baked", "emission GI flag: none, realtime, baked or emissive_is_black")
	fs.BoolVar(&o.recursive, "recursive", false, "discover textures in sub-folders too")
	fs.BoolVar(&o.dryRun, "dry-run", false, "print the detected bindings without writing anything")
	fs.BoolVar(&o.watch, "watch", false, "rebuild whenever a texture in the folder changes")
	for _, role := range metadata.TextureRoles {
		o.slots[role] = fs.String(role.String(), "", "explicit "+role.String()+" texture")
	}

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: pbrforge [flags] <texture folder>...\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	o.visited = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.visited[f.Name] = true })

	if fs.NArg() == 0 {
		fs.Usage()
		return nil, nil, core.ErrEmptyFolderPath
	}
	return o, fs.Args(), nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		core.LogError(err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {
	o, folders, err := parseFlags(args)
	if err != nil {
		return err
	}

	appConfig, err := loadApplicationConfig(o)
	if err != nil {
		return err
	}
	if err := core.SetLogLevel(appConfig.Config.LogLevel); err != nil {
		return err
	}

	e, err := engine.New(appConfig)
	if err != nil {
		return err
	}
	if err := e.Initialize(); err != nil {
		return err
	}
	defer func() { _ = e.Shutdown() }()

	// signal channel to capture system calls
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		cancel()
	}()

	for _, folder := range folders {
		desc, err := buildDescriptor(e, o, folder)
		if err != nil {
			return err
		}

		switch {
		case o.dryRun:
			p, err := e.Preview(desc)
			if err != nil {
				return err
			}
			fmt.Println(renderPreview(p))
		case o.watch:
			if len(folders) > 1 {
				return fmt.Errorf("watch mode takes a single folder, got %d", len(folders))
			}
			err := e.Watch(ctx, desc, func(res *systems.Result, err error) {
				if err != nil {
					core.LogError(err.Error())
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		default:
			if _, err := e.Run(ctx, desc); err != nil {
				return fmt.Errorf("%s: %w", folder, err)
			}
		}
	}
	return nil
}

func loadApplicationConfig(o *options) (*engine.ApplicationConfig, error) {
	cfgPath := o.config
	if cfgPath == "" {
		cfgPath = filepath.Join(o.project, core.ConfigFileName)
	}
	cfg, err := core.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.mode != "" {
		cfg.DefaultMode = o.mode
	}
	if o.recursive {
		cfg.Recursive = true
	}
	if o.pack {
		cfg.PackSmoothness = true
	}
	if o.noPack {
		cfg.PackSmoothness = false
	}

	prefsPath := o.prefs
	if prefsPath == "" {
		if prefsPath, err = core.DefaultPreferencesPath(); err != nil {
			return nil, err
		}
	}
	prefs, err := core.LoadPreferences(prefsPath)
	if err != nil {
		return nil, err
	}
	if o.visited["prefix"] || o.visited["suffix"] {
		if o.visited["prefix"] {
			prefs.SetString(core.PrefKeyMaterialPrefix, o.prefix)
		}
		if o.visited["suffix"] {
			prefs.SetString(core.PrefKeyMaterialSuffix, o.suffix)
		}
		if !o.dryRun {
			if err := prefs.Save(); err != nil {
				return nil, err
			}
		}
	}

	return &engine.ApplicationConfig{
		ProjectRoot: o.project,
		Config:      cfg,
		Preferences: prefs,
	}, nil
}

func buildDescriptor(e *engine.Engine, o *options, folder string) (*metadata.MaterialDescriptor, error) {
	desc, err := e.NewDescriptor(folder)
	if err != nil {
		return nil, err
	}
	desc.NameOverride = o.name

	switch strings.ToLower(o.emission) {
	case "auto":
		desc.Emission.Auto = true
	case "on":
		desc.Emission.Auto = false
		desc.Emission.Enabled = true
	case "off":
		desc.Emission.Auto = false
		desc.Emission.Enabled = false
	default:
		return nil, fmt.Errorf("invalid -emission %q", o.emission)
	}
	if desc.Emission.GIFlag, err = metadata.ParseGIFlag(o.gi); err != nil {
		return nil, err
	}
	if o.emissionColor != "" {
		c, err := parseColor(o.emissionColor)
		if err != nil {
			return nil, err
		}
		desc.Emission.Color = c
	}

	db := e.AssetDatabase()
	for _, role := range metadata.TextureRoles {
		p := *o.slots[role]
		if p == "" {
			continue
		}
		assetPath, err := db.ToAssetPath(p)
		if err != nil {
			return nil, fmt.Errorf("-%s: %w", role, err)
		}
		tex, err := db.LoadTexture(assetPath)
		if err != nil {
			return nil, fmt.Errorf("-%s: %w", role, err)
		}
		desc.Slots.Set(role, tex)
	}
	return desc, nil
}

// parseColor reads "r,g,b" or "r,g,b,a" with components in [0, 1].
func parseColor(s string) (math.Vec4, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return math.Vec4{}, fmt.Errorf("invalid colour %q", s)
	}
	v := [4]float32{0, 0, 0, 1}
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return math.Vec4{}, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		if f < 0 {
			return math.Vec4{}, fmt.Errorf("invalid colour %q: negative component", s)
		}
		v[i] = float32(f)
	}
	return math.NewVec4FromArray(v), nil
}

func renderPreview(p *systems.Preview) string {
	rows := make([][]string, 0, len(metadata.TextureRoles))
	for _, role := range metadata.TextureRoles {
		tex := p.Slots.Get(role)
		if tex == nil {
			rows = append(rows, []string{role.String(), "-"})
			continue
		}
		rows = append(rows, []string{role.String(), tex.Path})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ROLE", "TEXTURE").
		Rows(rows...)

	mode := p.Workflow.Mode.String()
	if !p.Workflow.Overridable {
		mode += " (forced)"
	}
	pack := "off"
	if p.PackSource != nil {
		pack = p.PackSource.String()
		if p.PackInvert {
			pack += " (inverted)"
		}
	}
	return fmt.Sprintf("material %s\nworkflow %s\npack source %s\n%s", p.MaterialPath, mode, pack, t.String())
}
