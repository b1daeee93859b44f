package memory

import "github.com/jhoicas/rental-api/internal/domain/entity"

func cloneStore(s *entity.Store) *entity.Store {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func cloneItem(i *entity.Item) *entity.Item {
	if i == nil {
		return nil
	}
	c := *i
	if i.RentalRate != nil {
		rate := *i.RentalRate
		c.RentalRate = &rate
	}
	return &c
}

func cloneRental(r *entity.Rental) *entity.Rental {
	if r == nil {
		return nil
	}
	c := *r
	c.Lines = nil
	if r.Returned != nil {
		at := *r.Returned
		c.Returned = &at
	}
	return &c
}

func cloneLine(l *entity.RentalLineItem) *entity.RentalLineItem {
	c := *l
	c.Returns = nil
	return &c
}

func cloneTx(t *entity.StockTransaction) *entity.StockTransaction {
	c := *t
	return &c
}

func cloneReturn(r *entity.ReturnRecord) *entity.ReturnRecord {
	c := *r
	return &c
}
