package main

import "net/http"

type systemInfo struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

type healthResponse struct {
	Status     string     `json:"status"`
	SystemInfo systemInfo `json:"system_info"`
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{
		Status: "available",
		SystemInfo: systemInfo{
			Environment: app.config.Environment,
			Version:     app.config.Version,
		},
	}

	err := app.writeJSON(w, http.StatusOK, envelope{"status": res.Status, "system_info": res.SystemInfo}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
