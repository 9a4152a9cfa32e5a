package protocol

// Wire tags. Values are grouped by domain with gaps for growth. Never reuse a
// number; append new variants to the end of their group.
const (
	// Chest claims.
	TagRequestChestOpen Tag = 1
	TagGrantChestOpen   Tag = 2
	TagSpawnedChest     Tag = 3
	TagChestOpened      Tag = 4

	// Lobby and players.
	TagIntroduced         Tag = 10
	TagClientInGameReady  Tag = 11
	TagSelectedCharacter  Tag = 12
	TagPlayerDisconnected Tag = 13
	TagRunStarted         Tag = 14
	TagGameOver           Tag = 15
	TagTimerStarted       Tag = 16
	TagLobbyUpdates       Tag = 17
	TagPlayerUpdate       Tag = 18
	TagPlayerDied         Tag = 19
	TagPlayerRespawned    Tag = 20
	TagSpawnedReviver     Tag = 21
	TagHatChanged         Tag = 22

	// World objects and interactables.
	TagSpawnedObject                          Tag = 30
	TagSpawnedObjectInCrypt                   Tag = 31
	TagInteractableUsed                       Tag = 32
	TagStartingChargingShrine                 Tag = 33
	TagStoppingChargingShrine                 Tag = 34
	TagStartingChargingPylon                  Tag = 35
	TagStoppingChargingPylon                  Tag = 36
	TagStartingChargingLamp                   Tag = 37
	TagStoppingChargingLamp                   Tag = 38
	TagInteractableCharacterFightEnemySpawned Tag = 39

	// Enemies.
	TagSpawnedEnemy              Tag = 50
	TagEnemyDied                 Tag = 51
	TagEnemyDamaged              Tag = 52
	TagEnemyExploder             Tag = 53
	TagSpawnedEnemySpecialAttack Tag = 54
	TagRetargetedEnemies         Tag = 55
	TagStartedSwarmEvent         Tag = 56
	TagLightningStrike           Tag = 57

	// Final boss orbs.
	TagFinalBossOrbSpawned   Tag = 70
	TagFinalBossOrbDestroyed Tag = 71

	// Projectiles.
	TagSpawnedProjectile             Tag = 80
	TagSpawnedAxeProjectile          Tag = 81
	TagSpawnedBlackHoleProjectile    Tag = 82
	TagSpawnedRocketProjectile       Tag = 83
	TagSpawnedShotgunProjectile      Tag = 84
	TagSpawnedDexecutionerProjectile Tag = 85
	TagSpawnedFireFieldProjectile    Tag = 86
	TagSpawnedCringeSwordProjectile  Tag = 87
	TagSpawnedHeroSwordProjectile    Tag = 88
	TagSpawnedRevolverProjectile     Tag = 89
	TagSpawnedSniperProjectile       Tag = 90
	TagProjectileDone                Tag = 91
	TagProjectilesUpdate             Tag = 92

	// Pickups and inventory.
	TagSpawnedPickupOrb           Tag = 100
	TagSpawnedPickup              Tag = 101
	TagPickupApplied              Tag = 102
	TagPickupFollowingPlayer      Tag = 103
	TagWantToStartFollowingPickup Tag = 104
	TagWeaponAdded                Tag = 105
	TagTomeAdded                  Tag = 106
	TagItemAdded                  Tag = 107
	TagItemRemoved                Tag = 108
	TagWeaponToggled              Tag = 109

	// Weather and ambient entities.
	TagTornadoesSpawned    Tag = 120
	TagStormStarted        Tag = 121
	TagStormStopped        Tag = 122
	TagTumbleWeedSpawned   Tag = 123
	TagTumbleWeedsUpdate   Tag = 124
	TagTumbleWeedDespawned Tag = 125
)
