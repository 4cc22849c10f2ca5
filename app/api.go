package app

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/opnlaas/v2vlens/db"
	"github.com/opnlaas/v2vlens/driveriso"
	"github.com/opnlaas/v2vlens/ingest"
	"github.com/opnlaas/v2vlens/run"
	"github.com/opnlaas/v2vlens/trace"
)

func apiLogin(c *fiber.Ctx) (err error) {
	var username, password string = c.FormValue("username"), c.FormValue("password")

	if !checkCredentials(username, password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid credentials"})
	}

	var token string
	if token, err = issueToken(username); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to issue token"})
	}

	c.Cookie(&fiber.Cookie{
		Name:  "Authorization",
		Value: token,
	})

	return c.JSON(fiber.Map{"token": token})
}

// loadRun resolves the :name path param against the in-memory registry.
// Runs persisted by a previous process show up in /api/runs but need a
// re-ingest before their parsed views are available.
func loadRun(c *fiber.Ctx) (parsed *run.Run, err error) {
	if parsed = ingest.Get(c.Params("name")); parsed == nil {
		err = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "run not loaded"})
	}

	return
}

// Runs API

func apiRunsAll(c *fiber.Ctx) (err error) {
	var records []*db.ConversionRun
	if records, err = db.ConversionRuns.SelectAll(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(records)
}

func apiRunByName(c *fiber.Ctx) (err error) {
	var record *db.ConversionRun
	if record, err = db.ConversionRuns.Select(c.Params("name")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no such run"})
	}

	return c.JSON(record)
}

func apiRunDelete(c *fiber.Ctx) (err error) {
	if err = ingest.Forget(c.Params("name")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.SendStatus(fiber.StatusOK)
}

func apiRunStages(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	return c.JSON(parsed.Stages())
}

func apiRunLines(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	var (
		start int = c.QueryInt("start", 0)
		count int = c.QueryInt("count", 500)
		total int = parsed.TotalLines()
	)

	if start < 0 {
		start = 0
	}

	if start > total {
		start = total
	}

	if count < 0 || start+count > total {
		count = total - start
	}

	type lineView struct {
		Index    int    `json:"index"`
		Text     string `json:"text"`
		Category string `json:"category"`
	}

	var lines []lineView = make([]lineView, 0, count)
	for _, line := range parsed.Lines[start : start+count] {
		lines = append(lines, lineView{
			Index:    line.Index,
			Text:     line.Text,
			Category: line.Category.String(),
		})
	}

	return c.JSON(fiber.Map{
		"total": total,
		"start": start,
		"lines": lines,
	})
}

// Extraction API

func apiRunDisks(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	return c.JSON(parsed.DiskLayouts())
}

func apiRunKernels(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	return c.JSON(parsed.Kernels())
}

func apiRunPackages(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	return c.JSON(parsed.PackageOperations())
}

func apiRunInitramfs(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	return c.JSON(parsed.InitramfsRebuilds())
}

func apiRunBootloader(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	return c.JSON(parsed.Bootloader())
}

func apiRunFsChecks(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	return c.JSON(parsed.FsChecks())
}

func apiRunSELinux(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	return c.JSON(parsed.SELinux())
}

func apiRunSource(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	return c.JSON(parsed.SourceInfo())
}

func apiRunNBD(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	return c.JSON(parsed.NBDConnections())
}

func apiRunFirmware(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	return c.JSON(parsed.Firmware())
}

// Trace API

func apiRunCalls(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	var (
		calls []trace.ApiCallRecord = parsed.Calls()
		start int                  = c.QueryInt("start", 0)
		count int                  = c.QueryInt("count", 1000)
	)

	if start < 0 {
		start = 0
	}

	if start > len(calls) {
		start = len(calls)
	}

	if count < 0 || start+count > len(calls) {
		count = len(calls) - start
	}

	return c.JSON(fiber.Map{
		"total": len(calls),
		"start": start,
		"calls": calls[start : start+count],
	})
}

type copyView struct {
	trace.FileCopyRecord
	DriverMatches []driveriso.DriverMatch `json:"driver_matches,omitempty"`
}

func apiRunCopies(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	var (
		image *db.DriverImage = driveriso.Current()
		out   []copyView      = make([]copyView, 0, len(parsed.Copies()))
	)

	for _, record := range parsed.Copies() {
		var view copyView = copyView{FileCopyRecord: record}

		if image != nil && driveriso.IsDriverFile(record.Destination) {
			view.DriverMatches = driveriso.MatchFile(image, record.Destination)
		}

		out = append(out, view)
	}

	return c.JSON(out)
}

func apiRunTree(c *fiber.Ctx) (err error) {
	var parsed *run.Run
	if parsed, err = loadRun(c); parsed == nil {
		return
	}

	return c.JSON(parsed.Forest())
}

// Driver ISO API

func apiDriverImagesAll(c *fiber.Ctx) (err error) {
	var images []*db.DriverImage
	if images, err = db.DriverImages.SelectAll(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	// Hide the full file index from the listing; it can be huge
	type imageView struct {
		Name      string    `json:"name"`
		ISOPath   string    `json:"iso_path"`
		Size      int64     `json:"size"`
		IndexedAt time.Time `json:"indexed_at"`
		FileCount int       `json:"file_count"`
	}

	var out []imageView = make([]imageView, 0, len(images))
	for _, image := range images {
		out = append(out, imageView{
			Name:      image.Name,
			ISOPath:   image.ISOPath,
			Size:      image.Size,
			IndexedAt: image.IndexedAt,
			FileCount: image.FileCount,
		})
	}

	return c.JSON(out)
}
