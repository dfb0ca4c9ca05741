package chain

// Read-surface ABI fragments for the four deployed contracts. Only the
// view methods the gateway consumes are declared; write methods live in
// the wallet-side dApp.

const paperRegistryABI = `[
  {
    "type": "function", "name": "getPaper", "stateMutability": "view",
    "inputs": [{"name": "tokenId", "type": "uint256"}],
    "outputs": [
      {"name": "title", "type": "string"},
      {"name": "author", "type": "string"},
      {"name": "affiliation", "type": "string"},
      {"name": "contentHash", "type": "string"},
      {"name": "status", "type": "uint8"},
      {"name": "mintedAt", "type": "uint256"}
    ]
  },
  {
    "type": "function", "name": "totalSupply", "stateMutability": "view",
    "inputs": [],
    "outputs": [{"name": "", "type": "uint256"}]
  },
  {
    "type": "function", "name": "ownerOf", "stateMutability": "view",
    "inputs": [{"name": "tokenId", "type": "uint256"}],
    "outputs": [{"name": "", "type": "address"}]
  }
]`

const verifierRegistryABI = `[
  {
    "type": "function", "name": "getVerifierStats", "stateMutability": "view",
    "inputs": [{"name": "verifier", "type": "address"}],
    "outputs": [
      {"name": "tier", "type": "uint8"},
      {"name": "totalVerifications", "type": "uint256"},
      {"name": "correctVerifications", "type": "uint256"},
      {"name": "rewardsEarned", "type": "uint256"}
    ]
  },
  {
    "type": "function", "name": "isRegisteredVerifier", "stateMutability": "view",
    "inputs": [{"name": "verifier", "type": "address"}],
    "outputs": [{"name": "", "type": "bool"}]
  },
  {
    "type": "function", "name": "getPaperVerifications", "stateMutability": "view",
    "inputs": [{"name": "tokenId", "type": "uint256"}],
    "outputs": [{
      "name": "", "type": "tuple[]",
      "components": [
        {"name": "verifier", "type": "address"},
        {"name": "approved", "type": "bool"},
        {"name": "comment", "type": "string"},
        {"name": "timestamp", "type": "uint256"},
        {"name": "rewardClaimed", "type": "bool"}
      ]
    }]
  }
]`

const governanceABI = `[
  {
    "type": "function", "name": "getProposal", "stateMutability": "view",
    "inputs": [{"name": "proposalId", "type": "uint256"}],
    "outputs": [
      {"name": "title", "type": "string"},
      {"name": "description", "type": "string"},
      {"name": "proposalType", "type": "uint8"},
      {"name": "status", "type": "uint8"},
      {"name": "votesFor", "type": "uint256"},
      {"name": "votesAgainst", "type": "uint256"},
      {"name": "totalVotes", "type": "uint256"},
      {"name": "proposer", "type": "address"},
      {"name": "startTime", "type": "uint256"},
      {"name": "endTime", "type": "uint256"},
      {"name": "requiredVotes", "type": "uint256"}
    ]
  },
  {
    "type": "function", "name": "getProposalCount", "stateMutability": "view",
    "inputs": [],
    "outputs": [{"name": "", "type": "uint256"}]
  },
  {
    "type": "function", "name": "getActiveProposals", "stateMutability": "view",
    "inputs": [],
    "outputs": [{"name": "", "type": "uint256[]"}]
  }
]`

const stablecoinABI = `[
  {
    "type": "function", "name": "balanceOf", "stateMutability": "view",
    "inputs": [{"name": "account", "type": "address"}],
    "outputs": [{"name": "", "type": "uint256"}]
  }
]`
