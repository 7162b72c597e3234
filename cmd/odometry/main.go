// Command odometry replays recorded feature-cloud sweeps through the
// odometry core. Each sweep is a set of CSV files in the input directory
// (NNNN_sharp.csv, NNNN_less_sharp.csv, NNNN_flat.csv, NNNN_less_flat.csv,
// NNNN_full.csv; one x,y,z,channel row per point). The accumulated pose is
// appended to a KITTI-layout trajectory file and, when -db is given,
// recorded in a sqlite run.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/lidar-odometry/internal/config"
	"github.com/banshee-data/lidar-odometry/internal/odom"
	"github.com/banshee-data/lidar-odometry/internal/trajdb"
)

func main() {
	var (
		inputDir   = flag.String("input", "", "directory of per-sweep CSV feature clouds")
		trajPath   = flag.String("traj", "trajectory.txt", "output trajectory file (KITTI layout)")
		dbPath     = flag.String("db", "", "optional sqlite trajectory database")
		configPath = flag.String("config", "", "optional tuning config JSON")
		label      = flag.String("label", "", "run label for the trajectory database")
	)
	flag.Parse()

	if *inputDir == "" {
		log.Fatal("odometry: -input directory is required")
	}

	params := odom.DefaultParams()
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("odometry: %v", err)
		}
		params = cfg.Params()
	}

	var store *trajdb.DB
	var runID string
	if *dbPath != "" {
		var err error
		store, err = trajdb.Open(*dbPath)
		if err != nil {
			log.Fatalf("odometry: %v", err)
		}
		defer store.Close()

		runID, err = store.StartRun(*label)
		if err != nil {
			log.Fatalf("odometry: %v", err)
		}
		log.Printf("odometry: recording run %s", runID)
	}

	prefixes, err := sweepPrefixes(*inputDir)
	if err != nil {
		log.Fatalf("odometry: %v", err)
	}
	if len(prefixes) == 0 {
		log.Fatalf("odometry: no sweeps found in %s", *inputDir)
	}

	core := odom.New(params)
	base := time.Unix(0, 0)
	ticks := 0

	for i, prefix := range prefixes {
		stamp := base.Add(time.Duration(float64(i) * params.ScanPeriod * float64(time.Second)))

		if err := installSweep(core, *inputDir, prefix, stamp); err != nil {
			log.Fatalf("odometry: sweep %s: %v", prefix, err)
		}
		core.SetIMUTrans(odom.IMUTrans{}, stamp)

		if !core.Process() {
			continue
		}
		ticks++

		pose := core.Pose()
		if err := odom.AppendTwist(*trajPath, pose); err != nil {
			log.Fatalf("odometry: %v", err)
		}

		if store != nil {
			inc := core.Increment()
			rec := trajdb.PoseRecord{
				RunID: runID,
				Frame: core.FrameCount(),
				RotX:  pose.RotX.Rad(), RotY: pose.RotY.Rad(), RotZ: pose.RotZ.Rad(),
				PosX: pose.Pos.X, PosY: pose.Pos.Y, PosZ: pose.Pos.Z,
				IncRotX: inc.RotX.Rad(), IncRotY: inc.RotY.Rad(), IncRotZ: inc.RotZ.Rad(),
				IncPosX: inc.Pos.X, IncPosY: inc.Pos.Y, IncPosZ: inc.Pos.Z,
				Converged:  core.Converged(),
				Degenerate: core.Degenerate(),
			}
			if err := store.RecordPose(rec); err != nil {
				log.Fatalf("odometry: %v", err)
			}
		}
	}

	log.Printf("odometry: processed %d of %d sweeps, trajectory in %s",
		ticks, len(prefixes), *trajPath)
}

// sweepPrefixes lists the sweep prefixes present in dir, in lexical order.
// A sweep exists when its less-flat cloud file does.
func sweepPrefixes(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*_less_flat.csv"))
	if err != nil {
		return nil, fmt.Errorf("scan input directory: %w", err)
	}

	prefixes := make([]string, 0, len(matches))
	for _, m := range matches {
		name := filepath.Base(m)
		prefixes = append(prefixes, strings.TrimSuffix(name, "_less_flat.csv"))
	}
	sort.Strings(prefixes)
	return prefixes, nil
}

// installSweep loads one sweep's feature clouds into the core. A missing
// full-resolution file is tolerated and replaced with an empty cloud.
func installSweep(core *odom.Odometry, dir, prefix string, stamp time.Time) error {
	kinds := []struct {
		suffix   string
		install  func(odom.Cloud, time.Time)
		required bool
	}{
		{"_sharp.csv", core.SetSharpCloud, true},
		{"_less_sharp.csv", core.SetLessSharpCloud, true},
		{"_flat.csv", core.SetFlatCloud, true},
		{"_less_flat.csv", core.SetLessFlatCloud, true},
		{"_full.csv", core.SetFullCloud, false},
	}

	for _, k := range kinds {
		path := filepath.Join(dir, prefix+k.suffix)
		cloud, err := loadCloud(path)
		if err != nil {
			if os.IsNotExist(err) && !k.required {
				k.install(odom.Cloud{}, stamp)
				continue
			}
			return err
		}
		k.install(cloud, stamp)
	}
	return nil
}

// loadCloud reads an x,y,z,channel CSV cloud. Blank lines and lines starting
// with '#' are skipped.
func loadCloud(path string) (odom.Cloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cloud odom.Cloud
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 4 {
			return nil, fmt.Errorf("%s:%d: want 4 fields, got %d", path, lineNo, len(fields))
		}

		var vals [4]float64
		for i, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			vals[i] = v
		}
		cloud = append(cloud, odom.Point{X: vals[0], Y: vals[1], Z: vals[2], Channel: vals[3]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return cloud, nil
}
