package repair

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/meigma/wheelpack/internal/wheel"
)

func (t *Tool) repairCommand(global *globalFlags) *cobra.Command {
	var (
		wheelDir string
		plat     string
	)
	cmd := &cobra.Command{
		Use:   "repair WHEEL...",
		Short: "Retag wheels for the build platform and repack them",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			retag := &retagOptions{plat: plat, onlyPlat: global.onlyPlat}
			for _, src := range args {
				if err := t.repairWheel(cmd, src, wheelDir, retag); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&wheelDir, "wheel-dir", "w", DefaultWheelDir, "directory to write repaired wheels to")
	cmd.Flags().StringVar(&plat, "plat", "", "target platform tag (default: the build platform)")
	return cmd
}

func (t *Tool) repairWheel(cmd *cobra.Command, src, wheelDir string, retag *retagOptions) error {
	ctx := cmd.Context()
	name, err := wheel.ParseFilename(filepath.Base(src))
	if err != nil {
		return err
	}
	t.logger.Info("repairing wheel", "wheel", src)

	tmp, err := os.MkdirTemp("", "wheelpack-repair-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	latest, err := unpack(ctx, src, tmp)
	if err != nil {
		return err
	}
	res, err := t.rebuild(ctx, tmp, name, wheelDir, retag, latest)
	if err != nil {
		return err
	}
	report(cmd.OutOrStdout(), res)
	return nil
}

func (t *Tool) packCommand(global *globalFlags) *cobra.Command {
	var (
		wheelDir string
		plat     string
	)
	cmd := &cobra.Command{
		Use:   "pack DIR",
		Short: "Build a wheel from an unpacked wheel directory",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			outDir, err := packWheelDir(dir, wheelDir)
			if err != nil {
				return err
			}
			distInfo, err := t.distInfo(dir)
			if err != nil {
				return err
			}
			metadata, err := os.ReadFile(filepath.Join(dir, distInfo, metadataFileName))
			if err != nil {
				return err
			}
			wheelFile, err := os.ReadFile(filepath.Join(dir, distInfo, wheelFileName))
			if err != nil {
				return err
			}
			name, err := wheel.FilenameFromMetadata(metadata, wheelFile)
			if err != nil {
				return err
			}

			var retag *retagOptions
			if plat != "" || global.onlyPlat {
				retag = &retagOptions{plat: plat, onlyPlat: global.onlyPlat}
			}
			t.logger.Info("packing directory", "dir", dir)
			res, err := t.rebuild(cmd.Context(), dir, name, outDir, retag, time.Time{})
			if err != nil {
				return err
			}
			report(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&wheelDir, "wheel-dir", "w", "", "directory to write the wheel to (default: parent of DIR)")
	cmd.Flags().StringVar(&plat, "plat", "", "retag for this platform")
	return cmd
}

// packWheelDir resolves the output directory for pack. The wheel may not
// land inside dir, where RECORD and the archive would pick it up.
func packWheelDir(dir, wheelDir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if wheelDir == "" {
		return filepath.Dir(absDir), nil
	}
	absWheelDir, err := filepath.Abs(wheelDir)
	if err != nil {
		return "", err
	}
	if rel, err := filepath.Rel(absDir, absWheelDir); err == nil && filepath.IsLocal(rel) {
		return "", fmt.Errorf("wheel directory %s is inside %s", wheelDir, dir)
	}
	return wheelDir, nil
}

func (t *Tool) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show WHEEL",
		Short: "Print a wheel's name, version, and tags",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			name, err := wheel.ParseFilename(filepath.Base(src))
			if err != nil {
				return err
			}
			var tags []wheel.Tag
			data, err := readWheelMember(src, wheelFileName)
			switch {
			case errors.Is(err, errNoMember):
				// Fall back to the tags the filename promises.
				t.logger.Warn("wheel has no WHEEL file, using filename tags", "wheel", src)
				tags = name.Tags()
			case err != nil:
				return err
			default:
				if tags, err = wheel.Tags(data); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name: %s\n", name.Distribution)
			fmt.Fprintf(out, "version: %s\n", name.Version)
			if name.Build != "" {
				fmt.Fprintf(out, "build: %s\n", name.Build)
			}
			for _, tag := range tags {
				fmt.Fprintf(out, "tag: %s\n", tag)
			}
			return nil
		},
	}
}
