package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/opnlaas/v2vlens/config"
)

func CreateApp() (app *fiber.App) {
	app = fiber.New(fiber.Config{
		AppName: "v2vlens",
	})

	// Auth API
	app.Post("/api/auth/login", apiLogin)

	// Runs API
	app.Get("/api/runs", apiRunsAll)
	app.Get("/api/runs/:name", apiRunByName)
	app.Delete("/api/runs/:name", mustBeLoggedIn, apiRunDelete)

	app.Get("/api/runs/:name/stages", apiRunStages)
	app.Get("/api/runs/:name/lines", apiRunLines)

	// Extraction API
	app.Get("/api/runs/:name/disks", apiRunDisks)
	app.Get("/api/runs/:name/kernels", apiRunKernels)
	app.Get("/api/runs/:name/packages", apiRunPackages)
	app.Get("/api/runs/:name/initramfs", apiRunInitramfs)
	app.Get("/api/runs/:name/bootloader", apiRunBootloader)
	app.Get("/api/runs/:name/fschecks", apiRunFsChecks)
	app.Get("/api/runs/:name/selinux", apiRunSELinux)
	app.Get("/api/runs/:name/source", apiRunSource)
	app.Get("/api/runs/:name/nbd", apiRunNBD)
	app.Get("/api/runs/:name/firmware", apiRunFirmware)

	// Trace API
	app.Get("/api/runs/:name/calls", apiRunCalls)
	app.Get("/api/runs/:name/copies", apiRunCopies)
	app.Get("/api/runs/:name/tree", apiRunTree)

	// Driver ISO API
	app.Get("/api/driver-images", apiDriverImagesAll)

	return
}

func StartApp() (err error) {
	var app *fiber.App = CreateApp()
	if config.Config.WebServer.TLSDir != "" {
		err = app.ListenTLS(config.Config.WebServer.Address, config.Config.WebServer.TLSDir+"/fullchain.pem", config.Config.WebServer.TLSDir+"/privkey.pem")
		return
	}

	err = app.Listen(config.Config.WebServer.Address)
	return
}
