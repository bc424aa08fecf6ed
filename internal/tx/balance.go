package tx

import "fmt"

// CheckBalance sums every outpoint's amount across all inputs and every
// output's amount, rejecting a transaction whose outputs would exceed its
// inputs.
func CheckBalance(t Tx) error {
	var inputSum, outputSum uint64
	for _, input := range t.Inputs {
		for _, outpoint := range input.Outpoints {
			inputSum += outpoint.Amount
		}
	}
	for _, output := range t.Outputs {
		outputSum += output.Amount
	}
	if outputSum > inputSum {
		return fmt.Errorf("output amount %d exceeds input amount %d", outputSum, inputSum)
	}
	return nil
}
