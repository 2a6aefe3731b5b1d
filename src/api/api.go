package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/harborview-partners/panel/src/api/config"
	"github.com/harborview-partners/panel/src/api/data"
	"github.com/harborview-partners/panel/src/api/types"
	"github.com/harborview-partners/panel/src/pipeline"
	"github.com/harborview-partners/panel/src/webserver"
)

var allModels = []interface{}{
	&types.Member{}, &types.Page{},
	&types.Proposal{}, &types.ProposalVote{},
	&types.Stage{}, &types.Deal{},
	&types.Company{}, &types.Contact{},
	&types.Setting{},
}

func migrate(db *gorm.DB) {
	if err := db.AutoMigrate(allModels...); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func seed(db *gorm.DB, cfg config.Config) {
	if err := pipeline.SeedStages(db); err != nil {
		log.Fatalf("seed stages: %v", err)
	}

	_ = db.FirstOrCreate(&types.Setting{Name: data.SettingQuorumPercentage},
		types.Setting{Name: data.SettingQuorumPercentage, Value: "50"}).Error

	// Bootstrap sudo account so a fresh install is reachable.
	var n int64
	db.Model(&types.Member{}).Count(&n)
	if n == 0 {
		if cfg.BootstrapPassword == "" {
			log.Printf("no members and no BOOTSTRAP_PASSWORD set; skipping bootstrap account")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("bootstrap password: %v", err)
		}
		member := types.Member{
			Email:        cfg.BootstrapEmail,
			Name:         "Bootstrap Admin",
			PasswordHash: string(hash),
			Role:         "sudo",
		}
		if err := db.Create(&member).Error; err != nil {
			log.Fatalf("bootstrap member: %v", err)
		}
		log.Printf("bootstrap sudo member %s created", cfg.BootstrapEmail)
	}
}

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	migrate(db)
	seed(db, cfg)

	if err := data.LoadSettings(db); err != nil {
		log.Fatalf("settings: %v", err)
	}

	rdb := data.MustRedis(cfg.RedisURL)

	router := webserver.New(cfg, db, rdb)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("Panel API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
