package contentstream

// TextBlock is one BT..ET text object extracted from a content stream.
type TextBlock struct {
	// Raw is the full block including the BT/ET operators, Content just the
	// operators between them.
	Raw     string
	Content string
	// X, Y is the approximate anchor position taken from the first Tm or Td
	// operator; HasPos is false when neither is present.
	X, Y   float64
	HasPos bool
	// HasText reports whether the block actually shows text (Tj, TJ, ' or ").
	HasText bool
}

// TextBlocks extracts all BT..ET blocks from a decoded content stream.
// Unterminated blocks are dropped.
func TextBlocks(src string) []TextBlock {
	ops := Scan(src)
	var blocks []TextBlock
	for i := 0; i < len(ops); i++ {
		if ops[i].Operator != "BT" {
			continue
		}
		end := -1
		for j := i + 1; j < len(ops); j++ {
			if ops[j].Operator == "ET" {
				end = j
				break
			}
		}
		if end < 0 {
			break
		}
		tb := TextBlock{
			Raw:     src[ops[i].OpStart:ops[end].End],
			Content: src[ops[i].End:ops[end].Start],
		}
		var tdX, tdY float64
		hasTd := false
		for j := i + 1; j < end; j++ {
			op := ops[j]
			switch op.Operator {
			case "Tm":
				// Tm gives the exact text matrix; it wins over Td.
				if !tb.HasPos {
					if nums := op.NumericOperands(); len(nums) >= 6 {
						tb.X, tb.Y = nums[len(nums)-2], nums[len(nums)-1]
						tb.HasPos = true
					}
				}
			case "Td", "TD":
				if !hasTd {
					if nums := op.NumericOperands(); len(nums) >= 2 {
						tdX, tdY = nums[0], nums[1]
						hasTd = true
					}
				}
			case "Tj", "TJ", "'", "\"":
				tb.HasText = true
			}
		}
		if !tb.HasPos && hasTd {
			tb.X, tb.Y = tdX, tdY
			tb.HasPos = true
		}
		blocks = append(blocks, tb)
		i = end
	}
	return blocks
}
