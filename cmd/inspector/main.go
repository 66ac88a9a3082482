package main

import (
	"net/http"

	"github.com/docuflow/firestore-events/internal/logging"

	"github.com/sethvargo/go-signalcontext"

	server "github.com/docuflow/firestore-events/pkg/httpserver"
)

func main() {

	ctx, done := signalcontext.OnInterrupt()
	defer done()

	logger := logging.FromContext(ctx)

	var config server.Config = server.Config{Port: "8081"}

	handler, err := server.NewHandler(ctx, &config)

	if err != nil {
		logger.Errorf("inspector.NewHandler: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", handler)

	srv, err := server.NewServer(ctx, &config)
	if err != nil {
		logger.Fatalf("server.New: %v", err)
	}
	logger.Infof("listening on :%s", config.Port)

	if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
		logger.Fatal(err)
	}

}
