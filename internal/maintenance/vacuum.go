package maintenance

import (
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/archfrog/KioskForge/internal/metrics"
)

// Vacuum deletes the oldest files under dir until the cumulative size of the
// remaining files is at or below threshold bytes. Newest files survive.
// Returns the number of bytes freed.
func Vacuum(log *zap.Logger, dir string, threshold int64) (int64, error) {
	type entry struct {
		path string
		size int64
		mod  int64
	}

	var files []entry
	var total int64
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, entry{path: path, size: info.Size(), mod: info.ModTime().UnixNano()})
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	if total <= threshold {
		return 0, nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mod < files[j].mod })

	var freed int64
	for _, f := range files {
		if total <= threshold {
			break
		}
		if err := os.Remove(f.path); err != nil {
			log.Warn("vacuum could not remove file",
				zap.String("path", f.path), zap.Error(err))
			continue
		}
		total -= f.size
		freed += f.size
	}
	if freed > 0 {
		log.Info("vacuumed logs",
			zap.String("dir", dir),
			zap.Int64("freed_bytes", freed),
			zap.Int64("remaining_bytes", total))
		metrics.VacuumedBytes.Add(float64(freed))
	}
	return freed, nil
}
