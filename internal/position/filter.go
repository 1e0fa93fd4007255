package position

// withoutTransferPairs drops every TRANSFER_OUT that has a TRANSFER_IN with the
// same date and share count, together with that TRANSFER_IN. The first
// candidate found in input order is consumed. Unmatched TRANSFER_IN entries are
// moved to the end, everything else keeps its relative order.
func withoutTransferPairs(input []Transaction) []Transaction {
	var inbound []Transaction
	for _, t := range input {
		if t.Type == TransferIn {
			inbound = append(inbound, t)
		}
	}
	if len(inbound) == 0 {
		return input
	}

	output := make([]Transaction, 0, len(input))
next:
	for _, t := range input {
		switch t.Type {
		case TransferIn:
			continue
		case TransferOut:
			for i, in := range inbound {
				if sameDay(in.Date, t.Date) && in.Shares == t.Shares {
					inbound = append(inbound[:i], inbound[i+1:]...)
					continue next
				}
			}
		}
		output = append(output, t)
	}
	return append(output, inbound...)
}
