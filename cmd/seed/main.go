package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/recipebox/internal/seed"
	"github.com/dmitrijs2005/recipebox/internal/server"
	"github.com/dmitrijs2005/recipebox/internal/server/config"
	"github.com/dmitrijs2005/recipebox/internal/server/services"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	opts, err := seed.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	st, err := server.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	us := services.NewUserService(st.Runner, st.Repos, cfg)
	err = seed.Run(ctx, us, opts, os.Stdout)
	_ = st.Close()
	if err != nil {
		log.Fatalf("%v", err)
	}
}
