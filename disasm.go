// disasm.go - One-line mnemonic rendering for the ITRACE channel
//
// Supplemented from original_source/src/isa/riscv32/disasm.rs, which the
// distilled spec dropped; grounded in idiom on the teacher's per-core
// debug_disasm_ie32.go files (one disassembler returning formatted
// instruction text for the monitor).

package main

import "fmt"

func regName(i uint32) string {
	names := [32]string{
		"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
		"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
		"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
		"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
	}
	return names[i&0x1F]
}

// Disassemble renders inst as a short mnemonic-and-operand string. It is
// best-effort: unrecognised encodings fall back to ".word".
func Disassemble(pc uint32, inst Instruction) string {
	rd, rs1, rs2, imm := regName(inst.RD), regName(inst.RS1), regName(inst.RS2), inst.Imm

	switch inst.Opcode {
	case OpLui:
		return fmt.Sprintf("lui %s, %#x", rd, uint32(imm)>>12)
	case OpAuipc:
		return fmt.Sprintf("auipc %s, %#x", rd, uint32(imm)>>12)
	case OpJal:
		return fmt.Sprintf("jal %s, %#x", rd, pc+uint32(imm))
	case OpJalr:
		return fmt.Sprintf("jalr %s, %d(%s)", rd, imm, rs1)
	case OpBranch:
		names := map[uint32]string{0: "beq", 1: "bne", 4: "blt", 5: "bge", 6: "bltu", 7: "bgeu"}
		return fmt.Sprintf("%s %s, %s, %#x", names[inst.Funct3], rs1, rs2, pc+uint32(imm))
	case OpLoad:
		names := map[uint32]string{0: "lb", 1: "lh", 2: "lw", 4: "lbu", 5: "lhu"}
		return fmt.Sprintf("%s %s, %d(%s)", names[inst.Funct3], rd, imm, rs1)
	case OpStore:
		names := map[uint32]string{0: "sb", 1: "sh", 2: "sw"}
		return fmt.Sprintf("%s %s, %d(%s)", names[inst.Funct3], rs2, imm, rs1)
	case OpOpImm:
		names := map[uint32]string{0: "addi", 2: "slti", 3: "sltiu", 4: "xori", 6: "ori", 7: "andi", 1: "slli", 5: "srli"}
		if inst.Funct3 == 5 && (inst.Funct7>>5)&1 == 1 {
			return fmt.Sprintf("srai %s, %s, %d", rd, rs1, imm&0x1F)
		}
		return fmt.Sprintf("%s %s, %s, %d", names[inst.Funct3], rd, rs1, imm)
	case OpOp:
		return disasmOp(inst, rd, rs1, rs2)
	case OpAmo:
		return disasmAmo(inst, rd, rs1, rs2)
	case OpMiscMem:
		if inst.Funct3 == 1 {
			return "fence.i"
		}
		return "fence"
	case OpSystem:
		return disasmSystem(inst, rd, rs1)
	default:
		return fmt.Sprintf(".word %#08x", inst.Raw)
	}
}

func disasmOp(inst Instruction, rd, rs1, rs2 string) string {
	if inst.Funct7 == 0x01 {
		names := map[uint32]string{0: "mul", 1: "mulh", 2: "mulhsu", 3: "mulhu", 4: "div", 5: "divu", 6: "rem", 7: "remu"}
		return fmt.Sprintf("%s %s, %s, %s", names[inst.Funct3], rd, rs1, rs2)
	}
	names := map[uint32]string{0: "add", 1: "sll", 2: "slt", 3: "sltu", 4: "xor", 5: "srl", 6: "or", 7: "and"}
	mnem := names[inst.Funct3]
	if inst.Funct3 == 0 && inst.Funct7 == 0x20 {
		mnem = "sub"
	} else if inst.Funct3 == 5 && inst.Funct7 == 0x20 {
		mnem = "sra"
	}
	return fmt.Sprintf("%s %s, %s, %s", mnem, rd, rs1, rs2)
}

func disasmAmo(inst Instruction, rd, rs1, rs2 string) string {
	op := (inst.Funct7 >> 2) & 0x1F
	names := map[uint32]string{
		0x00: "amoadd.w", 0x01: "amoswap.w", 0x02: "lr.w", 0x03: "sc.w",
		0x04: "amoxor.w", 0x08: "amoor.w", 0x0C: "amoand.w",
		0x10: "amomin.w", 0x14: "amomax.w", 0x18: "amominu.w", 0x1C: "amomaxu.w",
	}
	if op == 0x02 {
		return fmt.Sprintf("lr.w %s, (%s)", rd, rs1)
	}
	return fmt.Sprintf("%s %s, %s, (%s)", names[op], rd, rs2, rs1)
}

func disasmSystem(inst Instruction, rd, rs1 string) string {
	if inst.Funct3 == 0 {
		switch inst.Imm {
		case 0:
			return "ecall"
		case 1:
			return "ebreak"
		case 0x302:
			return "mret"
		case 0x102:
			return "sret"
		default:
			return "system"
		}
	}
	names := map[uint32]string{1: "csrrw", 2: "csrrs", 3: "csrrc", 5: "csrrwi", 6: "csrrsi", 7: "csrrci"}
	return fmt.Sprintf("%s %s, %#x, %s", names[inst.Funct3], rd, uint32(inst.Imm)&0xFFF, rs1)
}
