package driveriso

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kdomanski/iso9660"
	"github.com/opnlaas/v2vlens/db"
	"github.com/z46-dev/go-logger"
)

var isoLog *logger.Logger = logger.NewLogger().SetPrefix("[ISO]", logger.BoldPurple)

var ErrUDFHybrid = errors.New("udf/hybrid image not supported by iso9660 reader")

var (
	currentMu    sync.RWMutex
	currentImage *db.DriverImage
)

// SetCurrent records the active driver image used to match file copies.
func SetCurrent(image *db.DriverImage) {
	currentMu.Lock()
	defer currentMu.Unlock()
	currentImage = image
}

func Current() *db.DriverImage {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return currentImage
}

func isUDFMismatch(err error) bool {
	return err != nil && strings.Contains(err.Error(), "little-endian and big-endian value mismatch")
}

// Index opens a virtio-win driver ISO and records every file path on it.
// The resulting DriverImage lets conversion-log file copies be traced back
// to the driver file they were sourced from.
func Index(isoPath string) (image *db.DriverImage, err error) {
	var (
		stat os.FileInfo
		file *os.File
		img  *iso9660.Image
	)

	if stat, err = os.Stat(isoPath); err != nil {
		return
	}

	image = &db.DriverImage{
		Name:      strings.TrimSuffix(filepath.Base(isoPath), filepath.Ext(isoPath)),
		ISOPath:   isoPath,
		Size:      stat.Size(),
		IndexedAt: time.Now(),
	}

	if file, err = os.Open(isoPath); err != nil {
		return
	}

	defer file.Close()

	if img, err = iso9660.OpenImage(file); err != nil {
		return
	}

	if image.Files, err = buildIndex(img); err != nil {
		if errors.Is(err, ErrUDFHybrid) {
			err = fmt.Errorf("driver ISO %s uses a UDF hybrid layout: %w", isoPath, ErrUDFHybrid)
		}

		return
	}

	image.FileCount = len(image.Files)
	isoLog.Successf("Indexed driver ISO %s (%d entries)\n", image.Name, image.FileCount)
	return
}

func buildIndex(image *iso9660.Image) (index []string, err error) {
	var walkFn func(*iso9660.File, string) error
	walkFn = func(file *iso9660.File, currPath string) (err error) {
		var lowerPath string = currPath
		if lowerPath == "" {
			lowerPath = "/"
		}

		index = append(index, strings.ToLower(lowerPath))

		if file.IsDir() {
			var children []*iso9660.File
			if children, err = file.GetChildren(); err != nil {
				if isUDFMismatch(err) {
					err = ErrUDFHybrid
				}

				return
			}

			for _, child := range children {
				var name string = child.Name()
				if name == "." || name == ".." {
					continue
				}

				var next string = path.Join(lowerPath, name)
				if !strings.HasPrefix(next, "/") {
					next = "/" + next
				}

				if err = walkFn(child, next); err != nil {
					return
				}
			}
		}

		return
	}

	var root *iso9660.File
	if root, err = image.RootDir(); err != nil {
		if isUDFMismatch(err) {
			err = ErrUDFHybrid
		}

		return
	}

	if err = walkFn(root, "/"); err != nil {
		return
	}

	sort.Strings(index)
	return
}

func indexContains(index []string, target string) bool {
	target = strings.ToLower(target)
	var idx = sort.SearchStrings(index, target)
	return idx < len(index) && index[idx] == target
}
