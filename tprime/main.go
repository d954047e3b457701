package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/tutils/tprime/cmd"
)

func main() {
	if addr := os.Getenv("TPRIME_PPROF"); addr != "" {
		go http.ListenAndServe(addr, nil)
	}
	log.SetFlags(log.Ltime | log.Lshortfile)
	cmd.Execute()
}
