package repair

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/meigma/wheelpack"
	"github.com/meigma/wheelpack/internal/platform"
	"github.com/meigma/wheelpack/internal/wheel"
)

const (
	wheelFileName    = "WHEEL"
	metadataFileName = "METADATA"
	anyPlatform      = "any"
)

// retagOptions selects the platform tags written into a rebuilt wheel.
type retagOptions struct {
	plat     string
	onlyPlat bool
}

// platforms returns the new platform tag set for a wheel that currently
// carries existing. The generic "any" tag is always dropped.
func (o retagOptions) platforms(existing []string) ([]string, error) {
	target := o.plat
	if target == "" {
		tag, err := platform.Tag()
		if err != nil {
			return nil, err
		}
		target = tag
	}
	if o.onlyPlat {
		return []string{target}, nil
	}
	plats := []string{target}
	for _, p := range existing {
		if p != anyPlatform {
			plats = append(plats, p)
		}
	}
	return plats, nil
}

// distInfo locates the root-level metadata directory of the tree at dir
// using the first node produced by the walk primitive.
func (t *Tool) distInfo(dir string) (string, error) {
	for d, err := range t.prims.Walk(dir) {
		if err != nil {
			return "", err
		}
		return wheel.DistInfoDir(d)
	}
	return "", fmt.Errorf("walk of %s produced no directories", dir)
}

// rebuild retags the unpacked wheel at dir when retag is non-nil,
// regenerates its RECORD, and packs it into wheelDir. name is the wheel's
// current filename and is updated with the new platform tags. A non-zero
// rootTime is applied to dir just before packing, so packers that take
// their timestamp from the root see a value derived from the input.
func (t *Tool) rebuild(ctx context.Context, dir string, name wheel.Filename, wheelDir string, retag *retagOptions, rootTime time.Time) (*wheelpack.Result, error) {
	distInfo, err := t.distInfo(dir)
	if err != nil {
		return nil, err
	}

	if retag != nil {
		wheelPath := filepath.Join(dir, distInfo, wheelFileName)
		data, err := os.ReadFile(wheelPath)
		if err != nil {
			return nil, err
		}
		plats, err := retag.platforms(name.Platform)
		if err != nil {
			return nil, err
		}
		rewritten, err := wheel.RewritePlatforms(data, plats)
		if err != nil {
			return nil, err
		}
		if err := replaceFile(wheelPath, rewritten); err != nil {
			return nil, err
		}
		t.logger.Debug("retagged wheel", "from", name.Platform, "to", plats)
		name.Platform = plats
	}

	recordPath := path.Join(distInfo, wheel.RecordName)
	recordFile := filepath.Join(dir, filepath.FromSlash(recordPath))
	// RECORD lists itself, so it has to exist before the walk.
	if _, err := os.Stat(recordFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(recordFile, nil, 0o644); err != nil {
			return nil, err
		}
	}
	record, err := wheel.BuildRecord(os.DirFS(dir), t.prims.Walk(dir), recordPath)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", recordPath, err)
	}
	if err := replaceFile(recordFile, record); err != nil {
		return nil, err
	}

	if !rootTime.IsZero() {
		if err := os.Chtimes(dir, rootTime, rootTime); err != nil {
			return nil, err
		}
	}

	dst := filepath.Join(wheelDir, name.String())
	t.logger.Debug("packing wheel", "src", dir, "dst", dst)
	res, err := t.prims.Pack(ctx, dir, dst)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", dst, err)
	}
	return res, nil
}

func report(out io.Writer, res *wheelpack.Result) {
	fmt.Fprintf(out, "%s %s\n", res.Path, res.Digest)
}
