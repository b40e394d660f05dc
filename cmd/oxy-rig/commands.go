package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Carmen-Shannon/oxy-rig/config"
	"github.com/Carmen-Shannon/oxy-rig/engine"
	"github.com/Carmen-Shannon/oxy-rig/engine/document"
	"github.com/Carmen-Shannon/oxy-rig/engine/loader"
	"github.com/Carmen-Shannon/oxy-rig/engine/logging"
	"github.com/Carmen-Shannon/oxy-rig/engine/model"
	"github.com/Carmen-Shannon/oxy-rig/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSimulateCmd(a *app) *cobra.Command {
	var (
		kind     string
		clip     string
		frames   int
		dt       float64
		realtime bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a clip on a preset rig and submit every frame to the configured sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newScene(kind)
			if err != nil {
				return err
			}
			if res := s.Bind(); !res.Valid {
				return fmt.Errorf("binding failed: %s", strings.Join(res.Errors, "; "))
			}
			if c, ok := s.Clip(clip); ok && a.cfg.Playback.Loop != nil {
				c.Loop = *a.cfg.Playback.Loop
			}
			if err := s.Play(clip); err != nil {
				return err
			}

			backend, err := renderer.ParseBackendType(a.cfg.Render.Backend)
			if err != nil {
				return err
			}
			sink, err := renderer.NewFrameSink(backend,
				renderer.WithLogger(logging.Component(a.logger, "renderer")),
				renderer.WithLabel(a.cfg.Render.Label),
				renderer.WithForceSoftwareRenderer(a.cfg.Render.ForceFallbackAdapter),
			)
			if err != nil {
				return err
			}
			defer sink.Close()

			e := engine.NewEngine(
				engine.WithLogger(logging.Component(a.logger, "engine")),
				engine.WithTickRate(a.cfg.Engine.TickRate),
				engine.WithWorkers(a.cfg.Engine.Workers),
				engine.WithProfiling(a.cfg.Engine.Profiling),
				engine.WithFrameSink(sink),
				engine.WithScene(0, s),
			)
			defer e.Quit()

			if dt <= 0 {
				dt = 1 / a.cfg.Engine.TickRate
			}

			steps := 0
			if realtime {
				e.SetTickCallback(func(float32) { steps++ })
				ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(float64(frames)/a.cfg.Engine.TickRate*float64(time.Second)))
				defer cancel()
				if err := e.Run(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
					return err
				}
			} else {
				for ; steps < frames; steps++ {
					if _, err := e.Step(float32(dt)); err != nil {
						return err
					}
				}
			}

			f := s.Frame()
			fmt.Fprintf(cmd.OutOrStdout(), "simulated %d steps of %q on %s: t=%.3fs state=%s parts=%d bones=%d\n",
				steps, clip, kind, f.Time, s.Player().State(), len(f.Parts), len(f.Bones))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "humanoid", "preset rig: humanoid or robot")
	cmd.Flags().StringVar(&clip, "clip", "walk", "clip to play")
	cmd.Flags().IntVar(&frames, "frames", 60, "number of steps")
	cmd.Flags().Float64Var(&dt, "dt", 0, "seconds per step (default 1/engine.tick_rate)")
	cmd.Flags().BoolVar(&realtime, "realtime", false, "step on the wall clock at engine.tick_rate instead of as fast as possible")
	return cmd
}

func newBindCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "bind",
		Short: "Generate, normalize and validate the bindings of a preset rig",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newScene(kind)
			if err != nil {
				return err
			}
			res := s.Bind()

			skel := s.Model().Skeleton()
			parts := s.Model().Parts()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PART\tBONE\tWEIGHT")
			for _, b := range s.Bindings() {
				p, _ := parts.Part(b.PartID)
				bone, _ := skel.Bone(b.BoneID)
				fmt.Fprintf(w, "%s\t%s\t%.3f\n", p.Name, bone.Name, b.Weight)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			d := s.Diagnostics()
			for _, u := range d.Unresolved {
				fmt.Fprintf(cmd.OutOrStdout(), "unresolved: part %s references missing bone %s\n", u.PartName, u.BoneName)
			}
			if !res.Valid {
				return fmt.Errorf("invalid bindings: %s", strings.Join(res.Errors, "; "))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d bindings, valid\n", len(s.Bindings()))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "humanoid", "preset rig: humanoid or robot")
	return cmd
}

func newIKCmd(a *app) *cobra.Command {
	var kind, chain, target string

	cmd := &cobra.Command{
		Use:   "ik",
		Short: "Solve a CCD chain on a preset rig towards a target",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newScene(kind)
			if err != nil {
				return err
			}
			ids, err := boneIDs(s, splitList(chain))
			if err != nil {
				return err
			}
			goal, err := parseVec3(target)
			if err != nil {
				return err
			}

			res := s.SolveIK(ids, goal)
			fmt.Fprintf(cmd.OutOrStdout(), "converged=%t iterations=%d distance=%.4f\n", res.Converged, res.Iterations, res.Distance)

			skel := s.Model().Skeleton()
			for _, id := range ids {
				b, _ := skel.Bone(id)
				fmt.Fprintf(cmd.OutOrStdout(), "  %s rotation=(%.4f, %.4f, %.4f)\n", b.Name, b.Rotation[0], b.Rotation[1], b.Rotation[2])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "humanoid", "preset rig: humanoid or robot")
	cmd.Flags().StringVar(&chain, "chain", "", "comma separated bone names from root to end effector")
	cmd.Flags().StringVar(&target, "target", "", "target position as x,y,z")
	_ = cmd.MarkFlagRequired("chain")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var out, kind string

	cmd := &cobra.Command{
		Use:   "import <file.gltf|file.glb>",
		Short: "Import a skeleton and its animations from glTF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loop := true
			if a.cfg.Playback.Loop != nil {
				loop = *a.cfg.Playback.Loop
			}
			l := loader.NewLoader(loader.BackendTypeGLTF,
				loader.WithLogger(logging.Component(a.logger, "loader")),
				loader.WithLoop(loop),
			)
			asset, err := l.Load(args[0])
			if err != nil {
				return err
			}

			doc := &document.Document{
				Version: document.Version,
				Name:    asset.Name,
				Bones:   asset.Bones,
				Clips:   asset.Clips,
			}
			if kind != "" {
				k, err := model.ParseModelKind(kind)
				if err != nil {
					return err
				}
				doc.Kind = &k
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %q: %d bones, %d clips\n", asset.Name, len(asset.Bones), len(asset.Clips))
			for _, c := range asset.Clips {
				fmt.Fprintf(cmd.OutOrStdout(), "  clip %s: %.3fs, %d keyframes\n", c.Name, c.Duration, len(c.Keyframes))
			}
			if out == "" {
				return nil
			}
			return document.SaveFile(out, doc)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write a scene document to this path")
	cmd.Flags().StringVar(&kind, "kind", "", "model kind recorded in the document (humanoid or robot)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out, kind string
	var bind bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a preset rig as a scene document",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newScene(kind)
			if err != nil {
				return err
			}
			if bind {
				s.Bind()
			}
			doc := document.FromScene(s)
			if out == "" || out == "-" {
				return document.Save(cmd.OutOrStdout(), doc)
			}
			return document.SaveFile(out, doc)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "humanoid", "preset rig: humanoid or robot")
	cmd.Flags().StringVar(&out, "out", "-", "destination path, - for stdout")
	cmd.Flags().BoolVar(&bind, "bind", true, "generate bindings before exporting")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init <path>",
		Short: "Write the effective configuration to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(a.cfg, args[0])
		},
	})
	return cmd
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) (mgl32.Vec3, error) {
	parts := splitList(s)
	if len(parts) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v mgl32.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("invalid component %q: %w", p, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}
