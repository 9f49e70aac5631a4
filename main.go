package main

import (
	"log"

	"github.com/freekieb7/nano/http"
)

func main() {
	router := http.NewRouter()
	router.GET("/", func(req *http.Request, res *http.Response) error {
		return res.WithText("hello world")
	})

	s := http.NewServer(router)

	log.Fatal(s.ListenAndServe("0.0.0.0:8080"))
}
