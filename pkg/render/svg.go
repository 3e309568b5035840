package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/conceptweave/pkg/layout"
	"github.com/vanderheijden86/conceptweave/pkg/model"
)

// SnapshotOptions controls SVG snapshot export.
type SnapshotOptions struct {
	Path   string
	Title  string
	Width  int
	Height int
}

// SaveSnapshot renders the positioned graph to an SVG file. This is an
// export surface: a pure transform of the graph plus settled positions, no
// animation state.
func SaveSnapshot(g *model.Graph, positions map[string]layout.Point, vp layout.Viewport, opts SnapshotOptions) error {
	if g.IsEmpty() {
		return fmt.Errorf("no concepts to export")
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 {
		opts.Width = 1200
	}
	if opts.Height <= 0 {
		opts.Height = 800
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	return writeSnapshot(file, g, positions, vp, opts)
}

func writeSnapshot(w io.Writer, g *model.Graph, positions map[string]layout.Point, vp layout.Viewport, opts SnapshotOptions) error {
	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, fmt.Sprintf("fill:%s", CSS(colorBackdrop)))

	if opts.Title != "" {
		canvas.Text(24, 32, opts.Title,
			fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", CSS(colorLabelLight)))
	}

	st := FrameState{Positions: positions, Viewport: vp}

	for _, e := range g.Edges {
		from, okF := screenPoint(st, e.SourceID)
		to, okT := screenPoint(st, e.TargetID)
		if !okF || !okT {
			continue
		}
		ctrl := controlPoint(from, to)
		c := NodeColor(e.SourceID)
		canvas.Qbez(int(from.X), int(from.Y), int(ctrl.X), int(ctrl.Y), int(to.X), int(to.Y),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.5;stroke-opacity:0.5", CSS(c)))
	}

	for _, n := range g.Nodes {
		p, ok := screenPoint(st, n.ID)
		if !ok {
			continue
		}
		c := NodeColor(n.ID)
		radius := n.Size / 2 * vp.Scale
		canvas.Circle(int(p.X), int(p.Y), int(radius),
			fmt.Sprintf("fill:%s;stroke:#ffffff;stroke-width:1;stroke-opacity:0.5", CSS(c)))
		if n.Size >= labelSizeThreshold {
			canvas.Text(int(p.X), int(p.Y+radius+14), truncateLabel(n.DisplayName, labelMaxRunes),
				fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", CSS(colorLabelLight)))
		}
	}

	canvas.End()
	return nil
}
