package db

import (
	"github.com/opnlaas/v2vlens/config"
	"github.com/z46-dev/go-logger"
	"github.com/z46-dev/gomysql"
)

var (
	ConversionRuns *gomysql.RegisteredStruct[ConversionRun]
	DriverImages   *gomysql.RegisteredStruct[DriverImage]
)

func InitDB() (err error) {
	var dbLog *logger.Logger = logger.NewLogger().SetPrefix("[DB]", logger.BoldGreen)

	if err = gomysql.Begin(config.Config.Database.File); err != nil {
		dbLog.Errorf("Failed to initialize database: %v\n", err)
		return
	}

	if ConversionRuns, err = gomysql.Register(ConversionRun{}); err != nil {
		dbLog.Errorf("Failed to register ConversionRun struct: %v\n", err)
		return
	}

	if DriverImages, err = gomysql.Register(DriverImage{}); err != nil {
		dbLog.Errorf("Failed to register DriverImage struct: %v\n", err)
		return
	}

	dbLog.Success("Database initialized!")
	return
}

func CloseDB() (err error) {
	return gomysql.Close()
}

func DatabaseFilePath() string {
	return config.Config.Database.File
}
