package domain

import "context"

type Repository interface {
	ListInsurers(ctx context.Context) ([]Insurer, error)
	ListLinesOfBusiness(ctx context.Context) ([]LineOfBusiness, error)
	ListProductsByInsurer(ctx context.Context, insurerID string) ([]InsuranceProduct, error)
}
