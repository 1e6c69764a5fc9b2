package txbuild

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memo-engine-sol/internal/consts"
)

var (
	testFeePayer  = common.PublicKeyFromString("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	testBlockhash = "BwQTxuShrwJR15U6Utdfmfr4kZ18VT6FA1fcp58sT8US"
)

func testProgramIx() types.Instruction {
	return types.Instruction{
		ProgramID: consts.SystemProgram,
		Accounts: []types.AccountMeta{
			{PubKey: testFeePayer, IsSigner: true, IsWritable: true},
		},
		Data: []byte{1, 2, 3},
	}
}

func TestInstructions_FixedOrder(t *testing.T) {
	ixs := Instructions(testFeePayer, "some memo text", []types.Instruction{testProgramIx()}, 200_000, 5_000)
	require.Len(t, ixs, 4)

	assert.Equal(t, consts.MemoProgram, ixs[0].ProgramID, "附言必须在 0 位")
	assert.Equal(t, []byte("some memo text"), ixs[0].Data)
	assert.Equal(t, consts.SystemProgram, ixs[1].ProgramID)
	assert.Equal(t, consts.ComputeBudgetProgram, ixs[2].ProgramID)
	assert.Equal(t, consts.ComputeBudgetProgram, ixs[3].ProgramID)

	// SetComputeUnitLimit 操作码 2，后跟 u32 小端额度
	require.GreaterOrEqual(t, len(ixs[2].Data), 5)
	assert.Equal(t, byte(2), ixs[2].Data[0])
	assert.Equal(t, uint32(200_000), binary.LittleEndian.Uint32(ixs[2].Data[1:5]))

	// SetComputeUnitPrice 操作码 3，后跟 u64 小端单价
	require.GreaterOrEqual(t, len(ixs[3].Data), 9)
	assert.Equal(t, byte(3), ixs[3].Data[0])
	assert.Equal(t, uint64(5_000), binary.LittleEndian.Uint64(ixs[3].Data[1:9]))
}

func TestInstructions_OmitsOptionalParts(t *testing.T) {
	// 无附言：业务指令占 0 位
	ixs := Instructions(testFeePayer, "", []types.Instruction{testProgramIx()}, 200_000, 0)
	require.Len(t, ixs, 2)
	assert.Equal(t, consts.SystemProgram, ixs[0].ProgramID)

	// 无预算：极简交易只剩业务指令
	ixs = Instructions(testFeePayer, "", []types.Instruction{testProgramIx()}, 0, 0)
	require.Len(t, ixs, 1)

	// 未设单价时不加价格指令
	ixs = Instructions(testFeePayer, "m", []types.Instruction{testProgramIx()}, 200_000, 0)
	require.Len(t, ixs, 3)
}

func TestInstructions_SimulationShapeMatchesFinal(t *testing.T) {
	program := []types.Instruction{testProgramIx()}
	sim := Instructions(testFeePayer, "memo", program, SimulationUnitLimit, 7)
	final := Instructions(testFeePayer, "memo", program, 92_634, 7)

	require.Equal(t, len(sim), len(final), "两轮组装的指令数必须一致")
	for i := range sim {
		assert.Equal(t, sim[i].ProgramID, final[i].ProgramID, "第 %d 条指令的程序不一致", i)
	}
}

func TestBuildUnsigned(t *testing.T) {
	ixs := Instructions(testFeePayer, "memo", []types.Instruction{testProgramIx()}, 200_000, 0)
	unsigned, err := BuildUnsigned(testFeePayer, testBlockhash, ixs)
	require.NoError(t, err)
	assert.Equal(t, 1, unsigned.NumRequired)

	raw, err := base64.StdEncoding.DecodeString(unsigned.Base64)
	require.NoError(t, err)
	require.Greater(t, len(raw), 65)
	assert.Equal(t, byte(1), raw[0], "单签名交易的签名计数为 1")
	assert.Equal(t, make([]byte, 64), raw[1:65], "未签名交易的签名位全零")
	assert.Equal(t, unsigned.MessageRaw, raw[65:], "签名位之后是序列化消息")
}

func TestWithSignatures(t *testing.T) {
	unsigned, err := BuildUnsigned(testFeePayer, testBlockhash,
		Instructions(testFeePayer, "", []types.Instruction{testProgramIx()}, 0, 0))
	require.NoError(t, err)

	_, err = unsigned.WithSignatures(nil)
	require.Error(t, err, "签名数量不足必须拒绝")

	_, err = unsigned.WithSignatures([][]byte{make([]byte, 63)})
	require.Error(t, err, "签名长度必须是 64 字节")

	sig := bytes.Repeat([]byte{0xAB}, 64)
	signed, err := unsigned.WithSignatures([][]byte{sig})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(signed)
	require.NoError(t, err)
	assert.Equal(t, byte(1), raw[0])
	assert.Equal(t, sig, raw[1:65])
	assert.Equal(t, unsigned.MessageRaw, raw[65:])
}

func TestAppendCompactU16(t *testing.T) {
	assert.Equal(t, []byte{0}, appendCompactU16(nil, 0))
	assert.Equal(t, []byte{0x7f}, appendCompactU16(nil, 127))
	assert.Equal(t, []byte{0x80, 0x01}, appendCompactU16(nil, 128))
	assert.Equal(t, []byte{0xff, 0x7f}, appendCompactU16(nil, 16383))
}
