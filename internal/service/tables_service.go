package service

import (
	"context"

	"sharefolio/internal/repository"
)

type TablesReport struct {
	Count  int      `json:"count"`
	Tables []string `json:"tables"`
}

type TablesService interface {
	GetTables(ctx context.Context) (*TablesReport, error)
}

type tablesService struct {
	tablesRepo repository.TablesRepository
}

func NewTablesService(tablesRepo repository.TablesRepository) TablesService {
	return &tablesService{tablesRepo: tablesRepo}
}

func (t *tablesService) GetTables(ctx context.Context) (*TablesReport, error) {
	tables, err := t.tablesRepo.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	return &TablesReport{Count: len(tables), Tables: tables}, nil
}
