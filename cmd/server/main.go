package main

import (
	"github.com/seehear/assist-backend/internal/bootstrap"
)

func main() {
	bootstrap.Run()
}
