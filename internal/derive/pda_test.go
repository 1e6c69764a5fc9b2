package derive

import (
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memo-engine-sol/internal/consts"
	"memo-engine-sol/internal/rpc"
)

// 测试网各合约地址与一个固定用户，推导结果离线预先算好
var (
	testUser        = common.PublicKeyFromString("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	testProfileProg = common.PublicKeyFromString("BwQTxuShrwJR15U6Utdfmfr4kZ18VT6FA1fcp58sT8US")
	testBlogProg    = common.PublicKeyFromString("HPvqPUneCLwb8YYoYTrWmy6o7viRKsnLTgxwkg7CCpfB")
	testForumProg   = common.PublicKeyFromString("9kwS5nSidmoHq84TyNzqFrtD29odp4sdRxm97tCbdpbS")
	testBurnProg    = common.PublicKeyFromString("FEjJ9KKJETocmaStfsFteFrktPchDLAVNTMeTvndoxaP")
	testMintProg    = common.PublicKeyFromString("A31a17bhgQyRQygeZa1SybytjbCdjMpu6oPr9M3iQWzy")
	testChatProg    = common.PublicKeyFromString("54ky4LNnRsbYioDSBKNrc5hG8HoDyZ6yhf8TuncxTBRF")
	testTokenMint   = common.PublicKeyFromString("HLCoc7wNDavNMfWWw2Bwd7U7A24cesuhBSNkxZgvZm1")
)

func TestProfilePDA_Golden(t *testing.T) {
	pda, err := ProfilePDA(testProfileProg, testUser)
	require.NoError(t, err)
	assert.Equal(t, "6katQisGQg9zsi1vbtDNsgNoTK6FMUseKtGzx6Zz7hqe", pda.Address.ToBase58())
	assert.Equal(t, uint8(253), pda.Bump)
}

func TestBlogPDAs_Golden(t *testing.T) {
	counter, err := BlogCounterPDA(testBlogProg)
	require.NoError(t, err)
	assert.Equal(t, "864aoHvs1zLSatJTFKT5EBt66cnQb4rwAH3f2ZAGUGaG", counter.Address.ToBase58())

	blog, err := BlogPDA(testBlogProg, 1)
	require.NoError(t, err)
	assert.Equal(t, "6uwc5ubVvPsqJarY8319FVcrsiRNnvAF3EcSUENUvj4P", blog.Address.ToBase58())
	assert.Equal(t, uint8(254), blog.Bump)
}

func TestForumPDAs_Golden(t *testing.T) {
	counter, err := GlobalCounterPDA(testForumProg)
	require.NoError(t, err)
	assert.Equal(t, "As6sBGxfd3Xek9GAXZ6YV5KWNpZBMBxETEDrw9djfqgx", counter.Address.ToBase58())

	post, err := PostPDA(testForumProg, 11)
	require.NoError(t, err)
	assert.Equal(t, "EVfKBzLTTyVLTcDpvPPhnmtGhszsqCwmC3VwdPtVP5Un", post.Address.ToBase58())
}

func TestChatPDAs_Golden(t *testing.T) {
	counter, err := GlobalCounterPDA(testChatProg)
	require.NoError(t, err)
	assert.Equal(t, "5XS9VX6ui6Uu1ckkTBuP1RWcjFaFsqcAHmLGassctqWY", counter.Address.ToBase58())

	group, err := ChatGroupPDA(testChatProg, 1)
	require.NoError(t, err)
	assert.Equal(t, "CPdZbMZfsbHf4QjxEVYgennEHHLuR7KuY1movuoAvZub", group.Address.ToBase58())
	assert.Equal(t, uint8(252), group.Bump)
}

func TestBurnStatsPDA_Golden(t *testing.T) {
	pda, err := UserBurnStatsPDA(testBurnProg, testUser)
	require.NoError(t, err)
	assert.Equal(t, "6DyJrrGnRFUcN7xBEp72MMNpzoTg9849AZicxkDqcJwW", pda.Address.ToBase58())
	assert.Equal(t, uint8(252), pda.Bump)
}

func TestMintAuthorityPDA_Golden(t *testing.T) {
	pda, err := MintAuthorityPDA(testMintProg)
	require.NoError(t, err)
	assert.Equal(t, "HDz8d6UjzAsGUjVgKKXPeSYrdME9YCFSAcRLJEZTKA91", pda.Address.ToBase58())
}

func TestAssociatedTokenAddress_Golden(t *testing.T) {
	pda, err := AssociatedTokenAddress(testUser, testTokenMint, consts.TokenProgram2022)
	require.NoError(t, err)
	assert.Equal(t, "6AEx6MrJ2BW8oGmLkx52RjsWFDBb6woaNJWq6SnW7nEz", pda.Address.ToBase58())
}

func TestPDA_DeterministicAndProgramScoped(t *testing.T) {
	a, err := ProfilePDA(testProfileProg, testUser)
	require.NoError(t, err)
	b, err := ProfilePDA(testProfileProg, testUser)
	require.NoError(t, err)
	assert.Equal(t, a, b, "同样输入必须推导出同样地址")

	// forum 与 project 同种子不同 program，地址必须不同
	forum, err := GlobalCounterPDA(testForumProg)
	require.NoError(t, err)
	other, err := GlobalCounterPDA(testBlogProg)
	require.NoError(t, err)
	assert.NotEqual(t, forum.Address, other.Address)
}

func TestInstructionDiscriminator_Golden(t *testing.T) {
	cases := []struct {
		name string
		want []byte
	}{
		{IxCreateProfile, []byte{225, 205, 234, 143, 17, 186, 50, 220}},
		{IxProcessBurn, []byte{220, 214, 24, 210, 116, 16, 167, 18}},
		{IxCreateBlog, []byte{221, 118, 241, 5, 53, 181, 90, 253}},
		{IxProcessMint, []byte{223, 152, 48, 109, 252, 238, 111, 136}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, InstructionDiscriminator(tc.name), tc.name)
	}
	// anchor 的保留指令名，社区周知的参考向量
	assert.Equal(t, []byte{175, 175, 109, 31, 13, 152, 155, 237}, InstructionDiscriminator("initialize"))
}

func TestParseAddress(t *testing.T) {
	pk, err := ParseAddress("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	require.NoError(t, err)
	assert.Equal(t, testUser, pk)

	_, err = ParseAddress("")
	require.Error(t, err)
	assert.Equal(t, rpc.KindInvalidAddress, rpc.KindOf(err))

	_, err = ParseAddress("0O0O0O") // 字母表外字符
	require.Error(t, err)
	assert.Equal(t, rpc.KindInvalidAddress, rpc.KindOf(err))

	_, err = ParseAddress("abc") // 长度不足 32 字节
	require.Error(t, err)
	assert.Equal(t, rpc.KindInvalidAddress, rpc.KindOf(err))
}
