package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"weldsim/model"
	"weldsim/report"
)

// maxUpload bounds batch spreadsheets, bytes.
const maxUpload = 10 << 20

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) listMaterials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.MaterialsResponse{
		Names:      s.table.Names(),
		Comparison: s.table.Comparison(),
	})
}

func (s *Server) compareMaterials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.table.Comparison())
}

func (s *Server) getMaterial(w http.ResponseWriter, r *http.Request) {
	rec, err := s.table.Lookup(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MaterialResponse{Record: rec, Comparison: rec.Comparison()})
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	var req model.SimulateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.run(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.simulateResponse(res, nil))
}

func (s *Server) sweepHandler(w http.ResponseWriter, r *http.Request) {
	var req model.SweepRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	param, points, err := s.sweep(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sweepResponse(param, points))
}

func (s *Server) sensitivityHandler(w http.ResponseWriter, r *http.Request) {
	var req model.SensitivityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := s.sensitivity(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sensitivityResponse(rows))
}

// export renders a report in the format named by the path: json, pdf or xlsx.
func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	var contentType string
	switch format {
	case "json":
		contentType = "application/json"
	case "pdf":
		contentType = "application/pdf"
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		writeError(w, r, fmt.Errorf("%w: unsupported export format %q", errBadRequest, format))
		return
	}

	var req model.ExportRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := s.document(r, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	switch format {
	case "json":
		err = doc.WriteJSON(&buf)
	case "pdf":
		err = doc.WritePDF(&buf)
	case "xlsx":
		err = doc.WriteXLSX(&buf)
	}
	if err != nil {
		writeError(w, r, fmt.Errorf("render %s report: %w", format, err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName(format)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.WithError(err).Warn("write export")
	}
}

func (s *Server) document(r *http.Request, req model.ExportRequest) (*report.Document, error) {
	res, err := s.run(req.Params)
	if err != nil {
		return nil, err
	}
	doc := report.New(res, s.table)
	for _, sw := range req.Sweeps {
		if isZeroRequest(sw.Params) {
			sw.Params = req.Params
		}
		param, points, err := s.sweep(r.Context(), sw)
		if err != nil {
			return nil, err
		}
		doc.AddSweep(param, points)
	}
	if req.Sensitivity {
		rows, err := s.sensitivity(r.Context(), model.SensitivityRequest{Params: req.Params})
		if err != nil {
			return nil, err
		}
		doc.SetSensitivity(rows)
	}
	return doc, nil
}

// batch simulates every row of an uploaded spreadsheet. Rejected rows are reported next to
// the successful ones rather than failing the upload.
func (s *Server) batch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer file.Close()

	reqs, rowErrs, err := report.ReadBatch(file)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	resp := model.BatchResponse{Results: []model.Summary{}, Errors: rowErrs}
	for _, row := range reqs {
		res, err := s.run(row.Request)
		if err != nil {
			resp.Errors = append(resp.Errors, model.RowError{Row: row.Row, Error: err.Error()})
			continue
		}
		resp.Results = append(resp.Results, model.NewSummary(res))
	}
	resp.Count = len(resp.Results)
	log.WithFields(log.Fields{"rows": len(reqs), "failed": len(resp.Errors)}).Info("batch simulated")
	writeJSON(w, http.StatusOK, resp)
}

func isZeroRequest(req model.SimulateRequest) bool {
	return req.Material == "" && req.Current == 0 && req.Voltage == 0 && req.TravelSpeed == 0
}
