// Command plot-trajectory renders a trajectory file (KITTI layout, one
// 3x4 pose per line) as a top-down PNG path. Useful for eyeballing a
// replay run without loading the file into an external viewer.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func main() {
	var (
		trajPath = flag.String("traj", "trajectory.txt", "trajectory file to render")
		outPath  = flag.String("out", "trajectory.png", "output PNG path")
		title    = flag.String("title", "Trajectory", "plot title")
	)
	flag.Parse()

	positions, err := loadTrajectory(*trajPath)
	if err != nil {
		log.Fatalf("plot-trajectory: %v", err)
	}
	if len(positions) == 0 {
		log.Fatalf("plot-trajectory: no poses in %s", *trajPath)
	}

	if err := renderPath(positions, *title, *outPath); err != nil {
		log.Fatalf("plot-trajectory: %v", err)
	}
	log.Printf("plot-trajectory: rendered %d poses to %s", len(positions), *outPath)
}

// loadTrajectory extracts the translation column of each 3x4 pose line.
func loadTrajectory(path string) ([][3]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trajectory file: %w", err)
	}
	defer f.Close()

	var positions [][3]float64
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 12 {
			return nil, fmt.Errorf("%s:%d: want 12 values, got %d", path, lineNo, len(fields))
		}

		// Translation lives at row-major indexes 3, 7, 11.
		var pos [3]float64
		for i, idx := range []int{3, 7, 11} {
			v, err := strconv.ParseFloat(fields[idx], 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			pos[i] = v
		}
		positions = append(positions, pos)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return positions, nil
}

// renderPath draws the x/z ground-plane path with start and end markers.
func renderPath(positions [][3]float64, title, outPath string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "z (m)"

	pts := make(plotter.XYs, len(positions))
	for i, pos := range positions {
		pts[i] = plotter.XY{X: pos[0], Y: pos[2]}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("build path line: %w", err)
	}
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("path", line)

	start, err := plotter.NewScatter(plotter.XYs{pts[0]})
	if err != nil {
		return fmt.Errorf("build start marker: %w", err)
	}
	start.Color = color.RGBA{G: 160, A: 255}
	start.Radius = vg.Points(3)
	p.Add(start)
	p.Legend.Add("start", start)

	end, err := plotter.NewScatter(plotter.XYs{pts[len(pts)-1]})
	if err != nil {
		return fmt.Errorf("build end marker: %w", err)
	}
	end.Color = color.RGBA{R: 200, A: 255}
	end.Radius = vg.Points(3)
	p.Add(end)
	p.Legend.Add("end", end)

	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(8*vg.Inch, 8*vg.Inch, outPath); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
