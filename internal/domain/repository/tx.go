package repository

// TxRepos repositorios atados a una misma transacción (los entrega el TxRunner de infraestructura).
type TxRepos struct {
	Items        ItemRepository
	Transactions StockTransactionRepository
	Rentals      RentalRepository
	Returns      ReturnRecordRepository
}
